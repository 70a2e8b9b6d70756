package snipe

import "errors"

var (
	// ErrTeleport is returned when the avatar could not be moved.
	ErrTeleport = errors.New("teleport failed")

	// ErrMapCell is returned when the map around the avatar could not be read.
	ErrMapCell = errors.New("map cell unavailable")

	// ErrSession is returned when the session refresh or heartbeat failed.
	ErrSession = errors.New("session check failed")

	// ErrEncounter is returned when the catch routine could not start or finish.
	ErrEncounter = errors.New("encounter failed")
)
