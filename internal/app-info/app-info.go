package app_info

// NAME is the name of this application
const NAME = "minicast"

// VERSION is the current version of this application
const VERSION = "v0.3.0"
