// Command nodestore exercises the nodestore arena and collector from the
// command line.
package main

func main() {
	execute()
}
