package session_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldgraph/varspec/session"
)

func TestRunConcurrentCollectsAllResultsByIndex(t *testing.T) {
	jobs := make([]session.Job[int], 20)
	for i := range jobs {
		i := i
		jobs[i] = func() (int, error) { return i * i, nil }
	}

	results := session.RunConcurrent(jobs)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i*i, r.Value)
		assert.NoError(t, r.Err)
	}
}

func TestRunConcurrentKeepsRunningAfterAJobErrors(t *testing.T) {
	boom := errors.New("boom")
	jobs := []session.Job[string]{
		func() (string, error) { return "", boom },
		func() (string, error) { return "ok", nil },
	}

	results := session.RunConcurrent(jobs)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.Equal(t, "ok", results[1].Value)
	assert.NoError(t, results[1].Err)
}
