// Package bot answers chat lookups (firm list, balance, monthly statement)
// over a Twilio WhatsApp webhook. Every message is handled on its own; no
// conversation state is kept between messages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mbh/ledger-sync/internal/logging"
	"mbh/ledger-sync/internal/statement"
)

// Lookup is the read side of the remote ledger used by the bot.
type Lookup interface {
	Firms(ctx context.Context) ([]string, error)
	Match(ctx context.Context, query string) ([]string, error)
	Balance(ctx context.Context, firm string) (string, error)
	Statement(ctx context.Context, firm string, period statement.Period) (*statement.Statement, error)
}

// RenderFunc writes a statement file into dir and returns its path.
type RenderFunc func(st *statement.Statement, dir string) (string, error)

// Reply is the answer to one message.
type Reply struct {
	Body string
	// MediaFile is the base name of a generated file under the static
	// directory, empty when nothing is attached.
	MediaFile string
}

const usage = "Send one of:\n" +
	"firms\n" +
	"balance <firm name>\n" +
	"statement <firm name> <month> <year> (e.g. statement shri sai MAY 24)"

// Responder turns a message into a Reply.
type Responder struct {
	lookup    Lookup
	render    RenderFunc
	staticDir string
	logger    logging.Logger
}

// NewResponder creates a Responder writing statements to staticDir.
func NewResponder(lookup Lookup, render RenderFunc, staticDir string, logger logging.Logger) *Responder {
	if render == nil {
		render = statement.Render
	}
	return &Responder{lookup: lookup, render: render, staticDir: staticDir, logger: logger}
}

// Respond handles one incoming message body.
func (r *Responder) Respond(ctx context.Context, message string) Reply {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return Reply{Body: usage}
	}

	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "firms":
		return r.firms(ctx)
	case "balance":
		if len(args) == 0 {
			return Reply{Body: "Please provide a firm name, e.g. balance shri sai"}
		}
		return r.balance(ctx, strings.Join(args, " "))
	case "statement":
		return r.statement(ctx, args)
	default:
		return Reply{Body: usage}
	}
}

func (r *Responder) firms(ctx context.Context) Reply {
	firms, err := r.lookup.Firms(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list firms")
		return Reply{Body: "Sorry, the firm list is not available right now."}
	}
	if len(firms) == 0 {
		return Reply{Body: "No firms found."}
	}
	return Reply{Body: "Please choose a firm:\n" + strings.Join(firms, "\n")}
}

func (r *Responder) balance(ctx context.Context, query string) Reply {
	firm, reply, ok := r.resolve(ctx, query, "balance")
	if !ok {
		return reply
	}
	balance, err := r.lookup.Balance(ctx, firm)
	if err != nil || balance == "" {
		if err != nil {
			r.logger.WithError(err).Warn("Balance lookup failed",
				logging.Field{Key: logging.FieldCounterparty, Value: firm})
		}
		return Reply{Body: fmt.Sprintf("Sorry, no balance information available for '%s'.", firm)}
	}
	return Reply{Body: fmt.Sprintf("The balance for %s is %s", firm, balance)}
}

func (r *Responder) statement(ctx context.Context, args []string) Reply {
	query, period, ok := splitPeriod(args)
	if !ok {
		return Reply{Body: "Please provide the firm name and the month and year, e.g. statement shri sai JAN 24"}
	}
	firm, reply, ok := r.resolve(ctx, query, "statement")
	if !ok {
		return reply
	}

	st, err := r.lookup.Statement(ctx, firm, period)
	if err != nil {
		if errors.Is(err, statement.ErrNoData) {
			return Reply{Body: fmt.Sprintf("No data found for %s in %s", firm, period.Label())}
		}
		r.logger.WithError(err).Error("Statement lookup failed",
			logging.Field{Key: logging.FieldCounterparty, Value: firm})
		return Reply{Body: fmt.Sprintf("Sorry, the statement for '%s' is not available right now.", firm)}
	}

	path, err := r.render(st, r.staticDir)
	if err != nil {
		r.logger.WithError(err).Error("Failed to render statement",
			logging.Field{Key: logging.FieldCounterparty, Value: firm})
		return Reply{Body: "Failed to generate the PDF statement."}
	}
	r.logger.Info("Generated statement",
		logging.Field{Key: logging.FieldCounterparty, Value: firm},
		logging.Field{Key: logging.FieldOutputFile, Value: path})

	return Reply{
		Body:      fmt.Sprintf("Statement for %s of %s.\n%s", firm, period.Label(), st.NetLine()),
		MediaFile: statement.FileName(st.Firm, st.Period),
	}
}

// resolve narrows query to exactly one firm. Otherwise it returns the reply
// to send instead.
func (r *Responder) resolve(ctx context.Context, query, command string) (string, Reply, bool) {
	matches, err := r.lookup.Match(ctx, query)
	if err != nil {
		r.logger.WithError(err).Error("Failed to match firm")
		return "", Reply{Body: "Sorry, the firm list is not available right now."}, false
	}
	switch len(matches) {
	case 0:
		return "", Reply{Body: "No firms found with that name. Please try again."}, false
	case 1:
		return matches[0], Reply{}, true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "These are the probable results with '%s':\n", strings.ToUpper(query))
	for i, m := range matches {
		fmt.Fprintf(&b, "%d) %s\n", i+1, m)
	}
	fmt.Fprintf(&b, "Send '%s <full firm name>' to choose one.", command)
	return "", Reply{Body: b.String()}, false
}

// splitPeriod takes the period from the end of args, as two words
// ("MAY 24") or one ("05-2024"). The rest is the firm query.
func splitPeriod(args []string) (string, statement.Period, bool) {
	for _, n := range []int{2, 1} {
		if len(args) <= n {
			continue
		}
		period, err := statement.ParsePeriod(strings.Join(args[len(args)-n:], " "))
		if err == nil {
			return strings.Join(args[:len(args)-n], " "), period, true
		}
	}
	return "", statement.Period{}, false
}
