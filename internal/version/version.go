package version

// Current is the release version stamped into builds.
//
// Keep it plain <major>.<minor>.<patch>; release tooling prepends the "v".
const Current = "0.1.0"
