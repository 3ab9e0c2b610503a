// oswatch - OpenStack usage statistics collector
// Collect. Snapshot. Ship.
package main

func main() {
	Execute()
}
