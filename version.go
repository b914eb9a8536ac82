package svcbot

// Version is the current version of the go-svcbot module
const Version = "1.0.0"
