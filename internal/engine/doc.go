/*
Package engine implements the playback state machine:

	Idle -> Loading -> Playing -> (Stopped | Finished | Failed)

with every terminal state a valid start for the next session. One session
is active at a time; concurrent play requests fail fast with
AlreadyPlaying.

Tracks on the internal root are opened directly; tracks on the removable
root go through the storage mount's guarded read path, so the settling and
rate-limit invariants apply to playback opens exactly as they do to scans.
Failures are typed (NotFound, UnsupportedFormat, IOFault, DecodeFault) and
terminal for the track only. Under PlayAll, a storage fault on a removable
track gets one remount attempt and one retry before the track is skipped;
decode and format faults skip immediately. This is the field-observed
remediation order: storage deserves one remount, bad files never do.

Stop is idempotent, callable during Loading or Playing, and always issues
a stop to the output capability so the sink can never be left playing
while the engine believes it is idle.
*/
package engine
