package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinFold/internal/domain/models"
)

func TestProgressPipelineFanOut(t *testing.T) {
	p := NewProgressPipeline(nil)

	ch1, cancel1 := p.Subscribe("run-a")
	ch2, cancel2 := p.Subscribe("run-a")
	other, cancelOther := p.Subscribe("run-b")
	defer cancel1()
	defer cancel2()
	defer cancelOther()

	p.Publish(models.WindowEvent{RunID: "run-a", Window: 3})

	for _, ch := range []<-chan models.WindowEvent{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, 3, ev.Window)
		default:
			t.Fatal("expected event")
		}
	}
	select {
	case <-other:
		t.Fatal("run-b subscriber must not receive run-a events")
	default:
	}
}

func TestProgressPipelineDropsWhenFull(t *testing.T) {
	p := NewProgressPipeline(nil, WithBufferSize(1))

	ch, cancel := p.Subscribe("run-a")
	defer cancel()

	p.Publish(models.WindowEvent{RunID: "run-a", Window: 0})
	p.Publish(models.WindowEvent{RunID: "run-a", Window: 1}) // dropped

	ev := <-ch
	assert.Equal(t, 0, ev.Window)
	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestProgressPipelineCloseRun(t *testing.T) {
	p := NewProgressPipeline(nil)

	ch, cancel := p.Subscribe("run-a")
	p.CloseRun("run-a")

	_, open := <-ch
	require.False(t, open)
	assert.Equal(t, 0, p.SubscriberCount("run-a"))

	// cancel after CloseRun must not panic.
	cancel()
}
