package tools

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/project-tools-mcp/internal/mcp"
)

const (
	// isoLayout is UTC with millisecond precision; lexical order is time order.
	isoLayout = "2006-01-02T15:04:05.000Z"

	// humanLayout is a full date followed by a long time with zone name.
	humanLayout = "Monday, 2 January 2006 at 3:04:05 pm MST"
)

// ist is India Standard Time. India observes no daylight saving, so a fixed
// offset is exact and needs no tz database.
var ist = time.FixedZone("IST", 5*60*60+30*60)

// CurrentTimeInput is the (empty) input of current_time_ist.
type CurrentTimeInput struct{}

// CurrentTimeOutput is the output of current_time_ist.
type CurrentTimeOutput struct {
	ISO   string `json:"iso" jsonschema:"the invocation instant in UTC, millisecond precision"`
	Human string `json:"human" jsonschema:"the same instant in India Standard Time"`
}

// FormatInstant renders t in both representations of current_time_ist.
func FormatInstant(t time.Time) CurrentTimeOutput {
	return CurrentTimeOutput{
		ISO:   t.UTC().Format(isoLayout),
		Human: t.In(ist).Format(humanLayout),
	}
}

func (c *Catalog) currentTime(_ context.Context, _ CurrentTimeInput) (CurrentTimeOutput, error) {
	return FormatInstant(c.clock.Now()), nil
}

func (c *Catalog) currentTimeDescriptor() (*mcp.Descriptor, error) {
	return mcp.NewDescriptor(
		CurrentTimeISTName,
		"Current Time (IST)",
		"Get the current time as a UTC ISO timestamp and in India Standard Time.",
		c.currentTime,
		mcp.WithAnnotations(&sdk.ToolAnnotations{ReadOnlyHint: true}),
	)
}
