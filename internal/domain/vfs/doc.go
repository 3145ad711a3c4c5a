/*
Package vfs is the virtual file store used by the Storage Manager app.

Files live as JSON records in a key-value Backend: an in-memory map or a
SQLite table. Every Store asks the permission broker for the storage channel
once, before its first operation. A denial is remembered for the life of the
Store and every later call fails with permission.ErrPermissionDenied without
prompting again.
*/
package vfs
