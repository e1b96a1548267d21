package control

import (
	"math"
	"sync/atomic"
)

// Profile returns the command at simulation time t.
type Profile interface {
	Value(t float64) float64
}

// ProfileFunc adapts a plain function to Profile.
type ProfileFunc func(t float64) float64

func (f ProfileFunc) Value(t float64) float64 { return f(t) }

// Constant holds one value forever.
type Constant float64

func (c Constant) Value(float64) float64 { return float64(c) }

// None commands zero.
func None() Profile { return Constant(0) }

// Sine is Offset + Amplitude*sin(2*pi*Frequency*t + Phase).
type Sine struct {
	Amplitude float64
	Frequency float64 // Hz
	Phase     float64 // rad
	Offset    float64
}

func (s Sine) Value(t float64) float64 {
	return s.Offset + s.Amplitude*math.Sin(2*math.Pi*s.Frequency*t+s.Phase)
}

// SquareWave starts at High and toggles to Low every HalfPeriod seconds.
type SquareWave struct {
	High       float64
	Low        float64
	HalfPeriod float64
}

func (s SquareWave) Value(t float64) float64 {
	if s.HalfPeriod <= 0 {
		return s.High
	}
	if int64(math.Floor(t/s.HalfPeriod))%2 == 0 {
		return s.High
	}
	return s.Low
}

// DefaultWinch is the reference winch sweep, 8 rad/s at 0.2 Hz.
func DefaultWinch() Profile {
	return Sine{Amplitude: 8, Frequency: 0.2}
}

// DefaultCurrent alternates the EDT current fraction between +0.8 and -0.8
// every 10 s.
func DefaultCurrent() Profile {
	return SquareWave{High: 0.8, Low: -0.8, HalfPeriod: 10}
}

// Manual is a command that another goroutine may change while a run is in
// progress.
type Manual struct {
	bits atomic.Uint64
}

func NewManual(initial float64) *Manual {
	m := &Manual{}
	m.Set(initial)
	return m
}

func (m *Manual) Set(v float64)         { m.bits.Store(math.Float64bits(v)) }
func (m *Manual) Value(float64) float64 { return math.Float64frombits(m.bits.Load()) }
