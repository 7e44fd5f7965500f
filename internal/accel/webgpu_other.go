//go:build !windows

package accel

// webgpuAvailable always reports false: the WebGPU bindings ship for Windows only.
func webgpuAvailable() bool {
	return false
}
