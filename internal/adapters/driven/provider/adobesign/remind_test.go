package adobesign

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/countersign-labs/countersign-cli/internal/core/domain"
)

// reminderMux serves members with IDs and captures reminder posts.
func reminderMux(captured *reminderRequest) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rest/v6/agreements/agr-1/members", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"participantSets":[
			{"memberInfos":[{"id":"p-alice","email":"alice@example.com"}]},
			{"memberInfos":[{"id":"p-bob","email":"Bob@Example.com"}]}
		]}`)
	})
	mux.HandleFunc("/api/rest/v6/agreements/agr-1/reminders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"rem-1"}`)
	})
	return mux
}

func TestDispatch_RemindsResolvedParticipants(t *testing.T) {
	var captured reminderRequest
	d := NewDispatcher(newTestClient(t, reminderMux(&captured)))

	targets := []domain.Recipient{
		{Email: "alice@example.com"},
		{Email: "bob@example.com"}, // matches Bob@Example.com case-insensitively
	}
	results, err := d.Dispatch(context.Background(), "agr-1", "please sign", targets)
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, res := range results {
		assert.True(t, res.Delivered, res.Email)
		assert.NoError(t, res.Err)
	}

	assert.ElementsMatch(t, []string{"p-alice", "p-bob"}, captured.RecipientParticipantIDs)
	assert.Equal(t, "please sign", captured.Note)
	assert.Equal(t, "ACTIVE", captured.Status)
}

func TestDispatch_UnknownRecipientFailsIndividually(t *testing.T) {
	var captured reminderRequest
	d := NewDispatcher(newTestClient(t, reminderMux(&captured)))

	targets := []domain.Recipient{
		{Email: "alice@example.com"},
		{Email: "stranger@example.com"},
	}
	results, err := d.Dispatch(context.Background(), "agr-1", "please sign", targets)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byEmail := map[string]bool{}
	for _, res := range results {
		byEmail[res.Email] = res.Delivered
	}
	assert.True(t, byEmail["alice@example.com"])
	assert.False(t, byEmail["stranger@example.com"])

	assert.Equal(t, []string{"p-alice"}, captured.RecipientParticipantIDs)
}

func TestDispatch_EndpointFailureFailsAllResolved(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rest/v6/agreements/agr-1/members", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"participantSets":[{"memberInfos":[{"id":"p-alice","email":"alice@example.com"}]}]}`)
	})
	mux.HandleFunc("/api/rest/v6/agreements/agr-1/reminders", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":"INVALID_ARGUMENTS","message":"reminder rejected"}`)
	})
	d := NewDispatcher(newTestClient(t, mux))

	results, err := d.Dispatch(context.Background(), "agr-1", "msg",
		[]domain.Recipient{{Email: "alice@example.com"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Delivered)
	assert.Error(t, results[0].Err)
}

func TestDispatch_NoTargetsIsNoOp(t *testing.T) {
	d := NewDispatcher(newTestClient(t, http.NewServeMux()))

	results, err := d.Dispatch(context.Background(), "agr-1", "msg", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
