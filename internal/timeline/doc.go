// Package timeline turns a workout definition into an ordered list of
// timestamped events for an audio player.
//
// Generation is single threaded and owns all of its state. Randomness comes
// from a Randomizer: with a seed every draw is keyed by seed+callCount on a
// linear congruential generator, so the same workout and seed always yield
// the same timeline.
package timeline
