package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/caseservice/pkg/logs"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingConn) Publish(subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return r.err
}

func TestSubject(t *testing.T) {
	e := Event{Type: CaseStatusChanged, LabID: "lab-1"}
	assert.Equal(t, "caseservice.case.status_changed.lab-1", Subject("caseservice", e))
	assert.Equal(t, "case.status_changed.lab-1", Subject("", e))
}

func TestNatsPublisher(t *testing.T) {
	rc := &recordingConn{}
	p := &NatsPublisher{nc: rc, prefix: "caseservice", logger: logs.Discard()}

	p.Publish(context.Background(), Event{Type: CaseCreated, CaseID: 7, LabID: "lab-1", Status: "pending"})

	require.Len(t, rc.subjects, 1)
	assert.Equal(t, "caseservice.case.created.lab-1", rc.subjects[0])

	var got Event
	require.NoError(t, json.Unmarshal(rc.payloads[0], &got))
	assert.Equal(t, int64(7), got.CaseID)
	assert.Equal(t, "pending", got.Status)
	assert.False(t, got.Timestamp.IsZero())
}

func TestNatsPublisherSwallowsErrors(t *testing.T) {
	rc := &recordingConn{err: errors.New("nats: connection closed")}
	p := &NatsPublisher{nc: rc, prefix: "caseservice", logger: logs.Discard()}

	assert.NotPanics(t, func() {
		p.Publish(context.Background(), Event{Type: CaseDeleted, CaseID: 1, LabID: "lab-1"})
	})
	assert.Len(t, rc.subjects, 1)
}

func TestWithMetricsForwards(t *testing.T) {
	rc := &recordingConn{}
	p := WithMetrics(&NatsPublisher{nc: rc, prefix: "caseservice", logger: logs.Discard()})

	p.Publish(context.Background(), Event{Type: CaseUpdated, CaseID: 3, LabID: "lab-2"})

	require.Len(t, rc.subjects, 1)
	assert.Equal(t, "caseservice.case.updated.lab-2", rc.subjects[0])
}
