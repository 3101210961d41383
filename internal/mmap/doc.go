// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// Anonymous mappings obtain zero-filled, page-aligned memory directly from
// the operating system, outside the Go garbage collector's control. Callers
// own the mapping and must Close() it to return the memory; Close is
// idempotent and safe to call from finalizer paths.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT (demand-paged,
//     like Unix mmap; avoids paging-file commitment upfront)
package mmap
