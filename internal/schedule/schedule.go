// Package schedule turns "N launches over D" into concrete tasks: which
// wallet, which token, at what time.
package schedule

import (
	"fmt"
	"math/rand"
	"time"

	"mintbot/internal/launch"
)

type Mode string

const (
	// ModeSequential spaces tasks evenly across the window, optionally
	// perturbed by the randomness factor.
	ModeSequential Mode = "sequential"
	// ModeConcurrent draws each task's offset independently and uniformly
	// from the window. Clustering is expected; wallet locking resolves it
	// at dispatch time.
	ModeConcurrent Mode = "concurrent"
)

// Task is one planned launch. Tasks are value objects: generated once,
// consumed once by the runner, never mutated.
//
// Seq is dense and 0-based over the *remaining* work of this run, not the
// campaign lifetime. WalletIndex is Seq mod pool size.
type Task struct {
	Seq         int
	WalletIndex int
	Token       launch.TokenMeta
	At          time.Time
}

// InputError reports planner misuse. It is a programming/configuration
// error and fatal to the run.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "schedule: invalid input: " + e.Reason }

// Input parameterizes Plan.
type Input struct {
	// Count of tasks to produce (remaining launches). Must be >= 1.
	Count int
	// Duration of the scheduling window. Must be > 0.
	Duration time.Duration
	// Wallets is the executor pool size. Must be >= 1.
	Wallets int
	// Pool of candidate tokens, sampled with replacement. Must be non-empty.
	Pool []launch.TokenMeta
	// Start anchors all offsets; on a resumed campaign this is the
	// original first-run timestamp, so restarts do not stretch the window.
	Start time.Time
	Mode  Mode
	// Randomness in [0,1]: sequential-mode jitter fraction.
	Randomness float64

	// Rand overrides the randomness source (tests). Nil means a
	// time-seeded source.
	Rand *rand.Rand
}

// Plan generates the task list.
//
// Output is in sequence order. In concurrent mode the offsets are i.i.d.
// uniform and deliberately left unsorted; a caller that dispatches one at a
// time must sort by At itself.
func Plan(in Input) ([]Task, error) {
	if in.Count < 1 {
		return nil, &InputError{Reason: fmt.Sprintf("count must be >= 1, got %d", in.Count)}
	}
	if in.Duration <= 0 {
		return nil, &InputError{Reason: fmt.Sprintf("duration must be > 0, got %v", in.Duration)}
	}
	if in.Wallets < 1 {
		return nil, &InputError{Reason: fmt.Sprintf("wallet pool size must be >= 1, got %d", in.Wallets)}
	}
	if len(in.Pool) == 0 {
		return nil, &InputError{Reason: "token pool is empty"}
	}
	if in.Randomness < 0 || in.Randomness > 1 {
		return nil, &InputError{Reason: fmt.Sprintf("randomness must be in [0,1], got %v", in.Randomness)}
	}

	rng := in.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	durMS := float64(in.Duration.Milliseconds())
	tasks := make([]Task, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		var offsetMS float64
		switch in.Mode {
		case ModeConcurrent:
			offsetMS = rng.Float64() * durMS
		default:
			base := float64(i) * durMS / float64(in.Count)
			if in.Randomness > 0 {
				// base * (1 ± randomness*u), u uniform in [0,1).
				sign := 1.0
				if rng.Intn(2) == 0 {
					sign = -1.0
				}
				offsetMS = base * (1 + sign*in.Randomness*rng.Float64())
			} else {
				offsetMS = base
			}
			if offsetMS < 0 {
				offsetMS = 0
			}
		}

		tasks = append(tasks, Task{
			Seq:         i,
			WalletIndex: i % in.Wallets,
			Token:       in.Pool[rng.Intn(len(in.Pool))],
			At:          in.Start.Add(time.Duration(offsetMS) * time.Millisecond),
		})
	}
	return tasks, nil
}
