// Package docker provides the Docker daemon reachability check used by
// crateci's preflight. The cross build tool runs every compilation inside
// a Docker container, so the doctor command and the optional --preflight
// run check verify the daemon responds before the pipeline starts.
//
// Socket detection follows DOCKER_HOST first, then the platform's default
// socket locations (Unix sockets on Linux/macOS, the named pipe on
// Windows).
package docker
