// Package discovery provides continuous mDNS/DNS-SD service discovery on
// the local network.
//
// An Engine opens one UDP multicast socket per eligible network interface
// per address family, periodically multicasts a query built from its
// follow-up query set, parses every datagram observed on the wire, and
// folds the results into a live, de-duplicated catalogue of services.
// PTR answers automatically widen the follow-up set, so discovering a
// service type leads to resolving its instances without caller
// involvement.
//
// Example:
//
//	engine, err := discovery.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine.SubscribeState(func(browsing bool) {
//	    log.Printf("browsing: %v", browsing)
//	})
//
//	if err := engine.StartBrowse(); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.StopBrowse()
//
//	time.Sleep(5 * time.Second)
//	for _, svc := range engine.Services() {
//	    fmt.Printf("%s %v :%d\n", svc.Name, svc.IPAddresses, svc.Port)
//	}
package discovery
