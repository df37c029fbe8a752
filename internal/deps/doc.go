// Package deps checks for the external binaries transcriptor shells out to.
package deps
