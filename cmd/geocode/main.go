// Command geocode resolves an address against the Google Geocoding API and
// prints the matching places.
//
// Usage:
//
//	geocode "1600 Amphitheatre Pkwy, Mountain View"
//	geocode Winnetka --all --types --bounds "34.172684,-118.604794|34.236144,-118.500938"
//	geocode Toledo --region es --format json
//	geocode point Winnetka
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
