// Command fkorder orders database tables by their foreign keys.
package main

import "github.com/dbsmedya/fkorder/cmd/fkorder/cmd"

func main() {
	cmd.Execute()
}
