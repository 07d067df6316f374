package blackboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatusCompletedSetsProgressAndEndTime(t *testing.T) {
	s := New()
	s.RegisterTask("t1")

	require.NoError(t, s.UpdateStatus("t1", StatusRunning, "agent-a", "", nil))
	require.NoError(t, s.UpdateStatus("t1", StatusCompleted, "agent-a", "done", nil))

	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.EndTime)
	require.NotNil(t, got.StartTime)
	assert.False(t, got.EndTime.Before(*got.StartTime))
}

func TestUpdateStatusFailedCascadesBlocked(t *testing.T) {
	s := New()
	s.RegisterTask("a")
	s.RegisterTask("b")
	s.RegisterTask("c")
	dependents := map[string][]string{
		"a": {"b"},
		"b": {"c"},
	}

	require.NoError(t, s.UpdateStatus("a", StatusFailed, "agent", "boom", dependents))

	b, err := s.Get("b")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, b.Status)

	c, err := s.Get("c")
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, c.Status)
}

func TestUpdateStatusFailedDoesNotOverrideTerminalDependents(t *testing.T) {
	s := New()
	s.RegisterTask("a")
	s.RegisterTask("b")
	dependents := map[string][]string{"a": {"b"}}

	require.NoError(t, s.UpdateStatus("b", StatusCompleted, "agent", "", nil))
	require.NoError(t, s.UpdateStatus("a", StatusFailed, "agent", "boom", dependents))

	b, err := s.Get("b")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status, "a terminal dependent must not be re-blocked")
}

func TestProgressAutoRulePromotesAndCompletes(t *testing.T) {
	s := New()
	s.RegisterTask("t1")

	require.NoError(t, s.UpdateProgress("t1", 1, "agent"))
	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, s.UpdateProgress("t1", 100, "agent"))
	got, err = s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestEveryWriteEmitsExactlyOneEvent(t *testing.T) {
	s := New()
	s.RegisterTask("t1")

	var mu sync.Mutex
	count := 0
	s.On(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	require.NoError(t, s.UpdateStatus("t1", StatusRunning, "agent", "", nil))
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestListenerPanicDoesNotAbortWrite(t *testing.T) {
	s := New()
	s.RegisterTask("t1")
	s.On(func(Event) { panic("boom") })

	err := s.UpdateStatus("t1", StatusRunning, "agent", "", nil)
	assert.NoError(t, err)

	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)
}

func TestArtifactRequiresPathOrContent(t *testing.T) {
	s := New()
	_, err := s.CreateArtifact(Artifact{Name: "empty", CreatedBy: "t1"})
	assert.Error(t, err)

	id, err := s.CreateArtifact(Artifact{Name: "ok", Content: "hello", CreatedBy: "t1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestNoteAckImpliesRead(t *testing.T) {
	s := New()
	id, err := s.CreateNote(Note{Author: "planner", Title: "check this", RequiresAck: true})
	require.NoError(t, err)

	require.NoError(t, s.Ack(id, "reviewer", "looks good"))

	n, err := s.GetNote(id)
	require.NoError(t, err)
	assert.Contains(t, n.ReadBy, "reviewer")
	require.Len(t, n.Acknowledgments, 1)
	assert.Equal(t, "reviewer", n.Acknowledgments[0].Agent)
}

func TestNoteBroadcastVsTargeted(t *testing.T) {
	s := New()
	_, err := s.CreateNote(Note{Author: "a", Title: "broadcast"})
	require.NoError(t, err)
	_, err = s.CreateNote(Note{Author: "a", Title: "targeted", TargetAgents: []string{"reviewer"}})
	require.NoError(t, err)

	forReviewer := s.ForAgent("reviewer", false)
	assert.Len(t, forReviewer, 2)

	forOther := s.ForAgent("someone-else", false)
	assert.Len(t, forOther, 1)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New()
	s.RegisterTask("t1")
	require.NoError(t, s.UpdateStatus("t1", StatusRunning, "agent", "", nil))
	_, err := s.CreateArtifact(Artifact{Name: "a", Content: "x", CreatedBy: "t1"})
	require.NoError(t, err)
	_, err = s.CreateNote(Note{Author: "a", Title: "n"})
	require.NoError(t, err)

	snap := s.Snapshot()
	s.Clear()
	assert.Empty(t, s.ListAll())

	s.Restore(snap)
	assert.Len(t, s.ListAll(), 1)
	assert.Len(t, s.ListArtifacts(), 1)
	assert.Len(t, s.ListNotes(), 1)
}

func TestConcurrentWritesToDistinctTasksAreSafe(t *testing.T) {
	s := New()
	const n = 50
	for i := 0; i < n; i++ {
		s.RegisterTask(taskIDFor(i))
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.UpdateProgress(taskIDFor(i), 100, "agent")
		}(i)
	}
	wg.Wait()

	for _, ts := range s.ListAll() {
		assert.Equal(t, 100, ts.Progress)
	}
}

func taskIDFor(i int) string {
	return "task-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}
