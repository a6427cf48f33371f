// Package port implements host port availability scanning.
//
// Every runtime target owns its declared host port exclusively, so before
// the launcher asks Compose to publish those ports it checks which of
// them are already bound on the host. The check asks the operating
// system directly via net.Listen, which is more reliable than parsing
// /proc/net/* or shelling out to lsof/ss, and needs no elevated
// permissions.
//
// A bound port is only a warning, not an error: when a target from a
// previous run is still up, its own container legitimately holds the
// port, and Compose will reconcile rather than fail.
package port
