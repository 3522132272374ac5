// Package main is the entry point for paper-applet.
package main

func main() {
	Execute()
}
