// mdns-discover browses the local network for mDNS/DNS-SD services for a
// fixed duration (or until interrupted) and then prints the catalogue and
// the intercepted questions.
//
// Usage:
//
//	mdns-discover [-duration 10s] [-interval 2.5s] [-verbose]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hittsya/mdns-tool/discovery"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "how long to browse before printing the summary")
	interval := flag.Duration("interval", 2500*time.Millisecond, "period between multicast queries")
	verbose := flag.Bool("verbose", false, "log socket and parse diagnostics to stderr")
	flag.Parse()

	opts := []discovery.Option{
		discovery.WithQueryInterval(*interval),
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()
		opts = append(opts, discovery.WithLogger(logger))
	}

	engine, err := discovery.New(opts...)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}

	engine.SubscribeState(func(browsing bool) {
		if browsing {
			fmt.Println("browsing started")
		} else {
			fmt.Println("browsing stopped")
		}
	})

	if err := engine.StartBrowse(); err != nil {
		log.Fatalf("failed to start browsing: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-time.After(*duration):
	case <-interrupt:
		fmt.Println("interrupted")
	}

	engine.StopBrowse()

	services := engine.Services()
	fmt.Printf("\n%d service(s) discovered:\n", len(services))
	for _, svc := range services {
		fmt.Printf("  %-50s %s port %d\n", svc.Name, strings.Join(svc.IPAddresses, ", "), svc.Port)
		for _, meta := range svc.Meta {
			switch data := meta.(type) {
			case discovery.PTRData:
				fmt.Printf("    PTR  %s\n", data.Target)
			case discovery.SRVData:
				fmt.Printf("    SRV  %s:%d (prio %d, weight %d)\n", data.Target, data.Port, data.Priority, data.Weight)
			case discovery.TXTData:
				fmt.Printf("    TXT  %s\n", strings.Join(data.Entries, " "))
			case discovery.AData:
				fmt.Printf("    A    %s\n", data.Address)
			case discovery.AAAAData:
				fmt.Printf("    AAAA %s\n", data.Address)
			case discovery.NSECData:
				fmt.Printf("    NSEC %s %v\n", data.NextDomain, data.Types)
			case discovery.UnknownData:
				fmt.Printf("    TYPE%d %d bytes\n", data.Type, len(data.Raw))
			}
		}
	}

	questions := engine.Questions()
	if len(questions) > 0 {
		fmt.Printf("\n%d question(s) intercepted:\n", len(questions))
		for _, q := range questions {
			fmt.Printf("  %-50s asked by %s\n", q.Name, q.IP)
		}
	}
}
