// Package sim orchestrates the tether, winch, EDT and gravity models into a
// fixed control-rate stepper with internal sub-stepping.
//
// Each control step samples the energy ledger once. Commands come from
// [control.Profile] values evaluated at the start of the step.
//
//	integ, err := sim.New(cfg)
//	if err != nil {
//		return err
//	}
//	summary, err := integ.Run(ctx, 60, control.DefaultWinch(), control.DefaultCurrent())
package sim
