// Worker node binary for the distributed simulator. Serves the Remote RPC
// service and exits when the master calls Shutdown.
package main

import (
	"flag"
	"net"
	"net/rpc"

	"github.com/sirupsen/logrus"

	"github.com/mattyoung101/ant-colony-hpc/sim"
)

func main() {
	listen := flag.String("listen", ":8030", "address to serve RPC on")
	logLevel := flag.String("log-level", "info", "logging level")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Bad log level %q: %v", *logLevel, err)
	}
	logrus.SetLevel(level)

	remote := sim.NewRemote()
	if err := rpc.Register(remote); err != nil {
		logrus.Fatalf("Failed to register RPC service: %v", err)
	}

	listener, err := net.Listen("tcp", *listen)
	if err != nil {
		logrus.Fatalf("Failed to listen on %s: %v", *listen, err)
	}
	logrus.Infof("Worker listening on %s", listener.Addr())
	go rpc.Accept(listener)

	<-remote.Quit
	logrus.Info("Worker exiting")
}
