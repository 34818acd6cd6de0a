package main

import "time"

const (
	DefaultMaxWaves       = 6
	DefaultZombiesPerWave = 5
	WaveExtraPerWave      = 3
	WaveRespawnDelay      = 3 * time.Second
)

// WavePhase is the wave director's position in its state machine.
type WavePhase int

const (
	WaveIdle     WavePhase = iota // game not started
	WaveSpawning                  // zombies being placed for the current wave
	WaveActive                    // wave in progress
	WaveCleared                   // wave finished, next spawn scheduled
	WaveDone                      // all waves cleared
)

// WaveDirector drives wave progression for one room. It owns no entities
// and no timers — the room spawns zombies and schedules the respawn delay;
// the director only decides what happens next. That keeps it a pure state
// machine the tests can drive tick by tick.
type WaveDirector struct {
	Phase       WavePhase
	Wave        int // 1-based, 0 before the game starts
	MaxWaves    int
	BasePerWave int
}

func NewWaveDirector() *WaveDirector {
	return &WaveDirector{
		Phase:       WaveIdle,
		MaxWaves:    DefaultMaxWaves,
		BasePerWave: DefaultZombiesPerWave,
	}
}

// SpawnCount returns how many zombies the current wave fields.
func (w *WaveDirector) SpawnCount() int {
	return w.BasePerWave + (w.Wave-1)*WaveExtraPerWave
}

// Start begins wave 1 and returns its spawn count.
func (w *WaveDirector) Start() int {
	w.Wave = 1
	w.Phase = WaveSpawning
	return w.SpawnCount()
}

// Activate marks the spawned wave as in progress.
func (w *WaveDirector) Activate() {
	w.Phase = WaveActive
}

// WaveOutcome is what the room should do after an end-of-tick check.
type WaveOutcome int

const (
	WaveContinue WaveOutcome = iota // nothing to do
	WaveSchedule                    // wave cleared, schedule the next spawn
	WaveVictory                     // final wave cleared, room won
)

// Advance runs the end-of-tick wave check. It only acts while a wave is
// active and its zombies are gone, so a cleared wave waiting on its respawn
// delay can never advance twice.
func (w *WaveDirector) Advance(zombiesLeft int) WaveOutcome {
	if w.Phase != WaveActive || zombiesLeft > 0 {
		return WaveContinue
	}
	if w.Wave+1 > w.MaxWaves {
		w.Phase = WaveDone
		return WaveVictory
	}
	w.Wave++
	w.Phase = WaveCleared
	return WaveSchedule
}

// BeginSpawn transitions cleared -> spawning when the respawn delay fires
// and returns the new wave's spawn count.
func (w *WaveDirector) BeginSpawn() int {
	w.Phase = WaveSpawning
	return w.SpawnCount()
}
