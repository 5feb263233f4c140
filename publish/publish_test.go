package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdoc/diff"
)

type fakeConn struct {
	msgs    []*nats.Msg
	flushes int
	err     error
}

func (f *fakeConn) PublishMsg(msg *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeConn) Flush() error {
	f.flushes++
	return nil
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name    string
		summary diff.Summary
		subject string
	}{
		{name: "changed", summary: diff.Summary{ChangedItems: 3, LogicalChanged: 1}, subject: "docs.diff.changed"},
		{name: "identical", summary: diff.Summary{}, subject: "docs.diff.identical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			p := New(conn, "docs.diff", nil)
			r := &diff.Report{ID: uuid.New(), Reference: "a.doc", Compared: "b.doc", Summary: tt.summary}

			require.NoError(t, p.Publish(context.Background(), r))
			require.Len(t, conn.msgs, 1)
			assert.Equal(t, 1, conn.flushes)

			msg := conn.msgs[0]
			assert.Equal(t, tt.subject, msg.Subject)
			assert.Equal(t, r.ID.String(), msg.Header.Get(ReportIDHeader))

			var e Event
			require.NoError(t, json.Unmarshal(msg.Data, &e))
			assert.Equal(t, r.ID, e.ID)
			assert.Equal(t, "b.doc", e.Compared)
			assert.Equal(t, tt.summary, e.Summary)
		})
	}
}

func TestPublishDefaultsAndErrors(t *testing.T) {
	t.Run("default subject", func(t *testing.T) {
		p := New(&fakeConn{}, "", nil)
		assert.Equal(t, DefaultSubject+".identical", p.Subject(Event{Identical: true}))
	})

	t.Run("connection error", func(t *testing.T) {
		p := New(&fakeConn{err: errors.New("no responders")}, "", nil)
		err := p.Publish(context.Background(), &diff.Report{})
		assert.ErrorContains(t, err, "no responders")
	})

	t.Run("cancelled context", func(t *testing.T) {
		conn := &fakeConn{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := New(conn, "", nil).Publish(ctx, &diff.Report{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, conn.msgs)
	})
}
