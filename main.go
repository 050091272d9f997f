package main

import (
	"fmt"
	"os"

	"framed/config"
	"framed/service"
	"framed/tcp"
	"framed/util/log"
)

var banner = `
   __                             _
  / _|_ __ __ _ _ __ ___   ___ __| |
 | |_| '__/ _\ | '_ \ _ \ / _ \ _\ |
 |  _| |  \__,| |_| | | | \___|\__,|
 |_| |_|      |_|   |_| |_|
                      v1.0-SNAPSHOT`

func main() {
	fmt.Println(banner)
	if len(os.Args) > 1 {
		config.LoadConfigs(os.Args[1])
	} else if _, err := os.Stat("./framed.yaml"); err == nil {
		config.LoadConfigs("./framed.yaml")
	}
	log.SetLevel(log.ParseLevel(config.Properties.LogLevel))

	store := service.NewStore(1024)
	server := tcp.NewServer(config.Properties.Address+":"+config.Properties.Port, store)
	if err := server.Start(); err != nil {
		panic(err)
	}
}
