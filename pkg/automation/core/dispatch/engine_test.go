package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dispatch "github.com/creatorbridge/maestro/pkg/automation/core/dispatch"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
)

func items(ids ...string) []dispatch.Item {
	out := make([]dispatch.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, dispatch.Item{ID: id})
	}
	return out
}

func TestRun_AllSucceed(t *testing.T) {
	engine := dispatch.NewEngine(0, nil)
	result, err := engine.Run(context.Background(), model.StepTypeOutreach, items("a", "b", "c"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			return item.ID + "-ok", nil
		}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Zero(t, result.FailureCount)
	assert.Equal(t, []string{"a", "b", "c"}, result.Order)
	assert.Equal(t, "b-ok", result.Outcomes["b"].Result)
	assert.Nil(t, result.AggregateErr)
}

func TestRun_OneFailureDoesNotAbortBatch(t *testing.T) {
	engine := dispatch.NewEngine(0, nil)
	result, err := engine.Run(context.Background(), model.StepTypeOutreach, items("a", "b", "c"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			if item.ID == "b" {
				return nil, errors.New("smtp timeout")
			}
			return nil, nil
		}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Len(t, result.Order, 3, "failure must not stop processing of later items")
	assert.Equal(t, dispatch.OutcomeFailure, result.Outcomes["b"].Status)
	assert.Contains(t, result.Outcomes["b"].ErrorMessage, "smtp timeout")
	require.Error(t, result.AggregateErr)
}

func TestRun_SuccessPlusFailureCoversAllItems(t *testing.T) {
	engine := dispatch.NewEngine(0, nil)
	all := items("a", "b", "c", "d", "e")
	result, err := engine.Run(context.Background(), model.StepTypeContractGeneration, all,
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			if item.ID == "b" || item.ID == "d" {
				return nil, errors.New("rejected")
			}
			return nil, nil
		}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, len(all), result.SuccessCount+result.FailureCount)
}

func TestRun_PanicIsContainedToItem(t *testing.T) {
	engine := dispatch.NewEngine(0, nil)
	result, err := engine.Run(context.Background(), model.StepTypeOutreach, items("a", "b"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			if item.ID == "a" {
				panic("integration bug")
			}
			return nil, nil
		}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, dispatch.OutcomeFailure, result.Outcomes["a"].Status)
	assert.Contains(t, result.Outcomes["a"].ErrorMessage, "panicked")
	assert.Equal(t, dispatch.OutcomeSuccess, result.Outcomes["b"].Status)
}

func TestRun_StopIsCheckedBetweenItems(t *testing.T) {
	engine := dispatch.NewEngine(0, nil)
	processed := 0
	result, err := engine.Run(context.Background(), model.StepTypeOutreach, items("a", "b", "c"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			processed++
			return nil, nil
		}, nil, func() bool { return processed >= 1 })
	require.NoError(t, err)

	assert.True(t, result.Stopped)
	assert.Equal(t, 1, processed, "in-flight item finishes, later items never start")
	assert.Len(t, result.Outcomes, 1)
}

func TestRun_ProgressCallbackSeesEveryOutcome(t *testing.T) {
	engine := dispatch.NewEngine(0, nil)
	var seen []string
	_, err := engine.Run(context.Background(), model.StepTypeOutreach, items("a", "b"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			return nil, nil
		},
		func(index, total int, outcome *dispatch.Outcome) {
			assert.Equal(t, 2, total)
			seen = append(seen, outcome.ItemID)
		}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRun_RespectsInterItemDelay(t *testing.T) {
	engine := dispatch.NewEngine(20*time.Millisecond, nil)
	start := time.Now()
	_, err := engine.Run(context.Background(), model.StepTypeOutreach, items("a", "b", "c"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			return nil, nil
		}, nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRun_ContextCancellationEndsBatch(t *testing.T) {
	engine := dispatch.NewEngine(50*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	result, err := engine.Run(ctx, model.StepTypeOutreach, items("a", "b", "c"),
		func(ctx context.Context, item dispatch.Item) (interface{}, error) {
			return nil, nil
		}, nil, nil)
	assert.Error(t, err)
	assert.True(t, result.Stopped)
}
