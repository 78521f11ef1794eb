package main

import (
	"fmt"
	"os"
	"strings"

	"synbi/internal/ipc"
)

const usage = `usage: synbi-ctl <wake|sleep|trigger|status> [utterance]

  wake      start the always-on listening session
  sleep     stop the listening session
  trigger   handle one utterance; captures from the mic unless text is given
  status    print the daemon's session state
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	arg := strings.Join(os.Args[2:], " ")

	reply, err := ipc.SendCommand(cmd, arg)
	if err != nil {
		fmt.Println("synbi-daemon not running:", err)
		os.Exit(1)
	}

	if !reply.OK {
		fmt.Println("error:", reply.Detail)
		os.Exit(1)
	}
	if reply.Detail != "" {
		fmt.Println(reply.Detail)
	}
}
