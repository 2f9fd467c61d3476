// Package utils validates untrusted fields before they become events.
package utils
