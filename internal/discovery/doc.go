// Package discovery finds rtuscope monitors on the local network via mDNS.
//
// A monitor started with --serve can announce its live segment stream as a
// "_rtuscope._tcp" service. Other machines then locate it with a Scanner
// and attach with 'rtuscope watch' without knowing its address.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	peers, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, p := range peers {
//	    fmt.Println(p, p.StreamURL())
//	}
//
// # Network Requirements
//
// mDNS uses UDP port 5353 on the local network segment; multicast must be
// allowed between the monitor and the watcher.
package discovery
