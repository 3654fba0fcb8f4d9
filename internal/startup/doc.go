// Package startup handles configuration loading and startup/shutdown
// logging for the jukebox service. Configuration comes from environment
// variables; the hardware-sensitive intervals (settling delay, read
// spacing, mount backoff) default to values calibrated against the target
// SD hardware and are overridable per device.
package startup
