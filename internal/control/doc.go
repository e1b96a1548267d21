// Package control provides open-loop command profiles for the winch and the
// electrodynamic tether.
//
// A [Profile] maps simulation time to a scalar command:
//
//   - [Sine]: periodic winch speed sweep
//   - [SquareWave]: alternating EDT current fraction
//   - [Constant] and [None]: fixed commands
//   - [Manual]: a command set from outside the simulation loop
//
// # Usage
//
//	winch := control.DefaultWinch()      // 8 sin(2 pi 0.2 t) rad/s
//	current := control.DefaultCurrent()  // +0.8 / -0.8 every 10 s
//	integ.Run(ctx, 60, winch, current)
package control
