package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooner-time/timeclock/internal/auth"
	"github.com/schooner-time/timeclock/internal/shared"
	"github.com/schooner-time/timeclock/jobs"
)

var gateCfg = auth.GateConfig{Secret: []byte("cli-secret"), Issuer: "time-tracker-api", Audience: "time-tracker-app"}

func TestTokenCommandMintsVerifiableCredential(t *testing.T) {
	sub := uuid.New()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	code := TokenCommand(gateCfg, TokenOptions{
		Subject:    sub.String(),
		Role:       "manager",
		Email:      "lead@example.com",
		TTL:        30 * time.Minute,
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Equal(t, 0, code, stderr.String())

	var summary TokenSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	assert.Equal(t, sub.String(), summary.Subject)

	gate, err := auth.NewGate(gateCfg)
	require.NoError(t, err)
	principal, err := gate.Authenticate(summary.Token)
	require.NoError(t, err)
	assert.Equal(t, sub, principal.UserID)
	assert.Equal(t, shared.RoleManager, principal.Role)
	assert.Equal(t, "lead@example.com", principal.Email)
}

func TestTokenCommandRejectsBadFlags(t *testing.T) {
	cases := map[string]TokenOptions{
		"bad subject": {Subject: "42", Role: "employee"},
		"bad role":    {Subject: uuid.NewString(), Role: "admin"},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			stdout := new(bytes.Buffer)
			stderr := new(bytes.Buffer)
			opts.Stdout, opts.Stderr = stdout, stderr
			assert.Equal(t, 1, TokenCommand(gateCfg, opts))
			assert.Empty(t, stdout.String())
			assert.True(t, strings.HasPrefix(stderr.String(), "token:"))
		})
	}
}

func TestBuildTask(t *testing.T) {
	task, err := BuildTask("stale-scan", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskStaleEntryScan, task.Type())
	assert.JSONEq(t, `{"threshold":"2h0m0s"}`, string(task.Payload()))

	_, err = BuildTask("gl-integrity", 0)
	assert.Error(t, err)
}

func TestJobsCLITrigger(t *testing.T) {
	mr := miniredis.RunT(t)
	jc, err := NewJobsCLI(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = jc.Close() })

	info, err := jc.Trigger(context.Background(), "stale-scan", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, jobs.QueueDefault, info.Queue)
	assert.Equal(t, jobs.TaskStaleEntryScan, info.Type)

	_, err = jc.Trigger(context.Background(), "unknown", time.Hour)
	assert.Error(t, err)
}
