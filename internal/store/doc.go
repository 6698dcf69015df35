// Package store provides a small generic registry used to track live
// entities such as running tasks and event subscriptions.
package store
