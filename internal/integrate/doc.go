// Package integrate provides the numerical steppers and the per-ray
// integration driver.
//
// Three methods are available, selectable independently for the ray and
// geodesic ODE families:
//
//   - [RK4]: classic fixed-step Runge–Kutta, for smooth non-stiff regimes
//   - [DoPri5]: Dormand–Prince 5(4) with embedded error control
//   - [ImplicitTrap]: implicit trapezoidal rule, for stiff regimes
//
// [Trace] drives one ray over a time span, adapting the step when the
// method supports it and terminating early on event conditions such as
// domain exit or momentum blow-up.
package integrate
