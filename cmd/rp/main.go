package main

import "routinepet/cmd/rp/root"

func main() {
	root.Execute()
}
