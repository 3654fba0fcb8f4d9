/*
Package storage owns the lifecycle of the removable storage mount.

The SD card sits behind an SPI bus with two field-observed failure modes:
the mount primitive reports success before the card can serve reads, and
rapid successive directory reads corrupt or hang the controller. Mount
absorbs both: a settling delay after every successful mount, and a rate
limiter enforcing a minimum spacing between guarded reads.

All removable reads go through GuardedRead. A read requested too early is
rejected with a RateLimited error instead of blocking, and an I/O failure
transitions the mount to Faulted, which never auto-recovers: callers must
invoke Mount explicitly before the device is touched again. This keeps a
retry storm from hammering a card that is already misbehaving.

The Driver and Handle interfaces bound the external block-device
capability; DirDriver is the production implementation over an OS mount
point, and tests substitute fakes. Clock and sleep hooks on Mount allow
the settling and spacing invariants to be tested with a simulated clock.
*/
package storage
