// Package sheets defines the outbound ports for the statement export.
package sheets

import (
	"context"
	"time"
)

// StatementRow is one exported line of the financial statement.
type StatementRow struct {
	Date        time.Time
	Kind        string
	Description string
	Category    string
	// Amount is a decimal string, e.g. "12.34".
	Amount    string
	UserName  string
	RemoteJID string
}

// StatementAppender appends statement rows to an external sheet.
type StatementAppender interface {
	Append(ctx context.Context, row StatementRow) (rowRef string, err error)
}
