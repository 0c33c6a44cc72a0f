package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/collab-api/internal/config"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
)

// completionServer answers chat completions with content and records the
// last request body.
func completionServer(t *testing.T, status int, content string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()

	var last map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&last)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func newTestAIService(url string) *AIService {
	ai := NewAIService(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: url + "/v1"})
	ai.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return ai
}

func TestAIService_DraftTasks(t *testing.T) {
	srv, last := completionServer(t, http.StatusOK,
		`{"tasks":[{"title":"Book venue","description":"for the offsite","priority":"high","dueDate":"2025-03-07T17:00:00Z"}]}`)
	ai := newTestAIService(srv.URL)

	tasks, err := ai.DraftTasks(context.Background(), "We need to book the venue by Friday")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Book venue", tasks[0].Title)
	assert.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, time.March, tasks[0].DueDate.Month())

	req := *last
	assert.Equal(t, "gpt-4o-mini", req["model"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, req["response_format"])
	messages := req["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Contains(t, messages[1].(map[string]interface{})["content"], "Current time: 2025-03-01T09:00:00Z")
}

func TestAIService_DraftTasksUpstreamError(t *testing.T) {
	srv, _ := completionServer(t, http.StatusTooManyRequests, "")
	_, err := newTestAIService(srv.URL).DraftTasks(context.Background(), "anything")
	assert.ErrorContains(t, err, "chat completion")
}

func TestSuggestTasks_ThroughModel(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK,
		`{"tasks":[{"title":"Call plumber","priority":"someday"},{"title":" "}]}`)
	env := newTaskEnv(t, func(d *TaskServiceDeps) { d.AI = newTestAIService(srv.URL) })

	tasks, err := env.svc.SuggestTasks(context.Background(), "the sink leaks, call the plumber")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Call plumber", tasks[0].Title)
	assert.Equal(t, models.TaskPriorityMedium, tasks[0].Priority)

	empty, _ := completionServer(t, http.StatusOK, `{"tasks":[]}`)
	env = newTaskEnv(t, func(d *TaskServiceDeps) { d.AI = newTestAIService(empty.URL) })
	_, err = env.svc.SuggestTasks(context.Background(), "nothing to do here")
	assert.ErrorIs(t, err, apierrors.ErrUnavailable)
}

func TestParseGeneratedTasks(t *testing.T) {
	tasks, err := parseGeneratedTasks("```json\n[{\"title\":\"Book venue\",\"priority\":\"high\",\"dueDate\":\"2025-03-01T10:00:00Z\"}]\n```")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Book venue", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, 2025, tasks[0].DueDate.Year())

	tasks, err = parseGeneratedTasks(`{"tasks":[{"title":"A"},{"title":"B","dueDate":null}]}`)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = parseGeneratedTasks("sorry, I cannot help")
	assert.Error(t, err)
}

func TestFilterGeneratedTasks(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-72 * time.Hour)
	future := now.Add(48 * time.Hour)

	tasks, err := filterGeneratedTasks([]GeneratedTask{
		{Title: "  "},
		{Title: "Old", DueDate: &past, Priority: "urgent"},
		{Title: "New", DueDate: &future, Priority: models.TaskPriorityLow},
	}, now)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[0].DueDate)
	assert.Equal(t, models.TaskPriorityMedium, tasks[0].Priority)
	assert.Equal(t, &future, tasks[1].DueDate)
	assert.Equal(t, models.TaskPriorityLow, tasks[1].Priority)

	_, err = filterGeneratedTasks([]GeneratedTask{{Title: ""}}, now)
	assert.ErrorIs(t, err, apierrors.ErrUnavailable)
}

func TestNewAIService(t *testing.T) {
	assert.Nil(t, NewAIService(config.OpenAIConfig{}))

	ai := NewAIService(config.OpenAIConfig{APIKey: "sk-test"})
	require.NotNil(t, ai)
	assert.Equal(t, "gpt-4o", ai.model)
}
