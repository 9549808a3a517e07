package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/storm-geocoder/internal/adapter/google"
	"github.com/couchcryptid/storm-geocoder/internal/domain"
	"github.com/couchcryptid/storm-geocoder/internal/observability"
)

type options struct {
	all     bool
	types   bool
	bounds  string
	region  string
	format  string
	verbose bool

	scheme   string
	domain   string
	resource string
	apiKey   string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "geocode ADDRESS...",
		Short: "resolve an address to coordinates with the Google Geocoding API",
		Long: `
geocode sends one request to the Google Geocoding API and prints the places it
returns. By default exactly one place is expected; pass --all to list every
candidate in the order the provider ranked them.
`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeocode(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, strings.Join(args, " "))
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.scheme, "scheme", google.DefaultScheme, "URL scheme, http or https")
	f.StringVar(&opts.domain, "domain", google.DefaultDomain, "geocoding API host")
	f.StringVar(&opts.resource, "resource", google.DefaultResource, "API path before the output format")
	f.StringVar(&opts.apiKey, "key", os.Getenv("GEOCODER_API_KEY"), "API key (defaults to $GEOCODER_API_KEY)")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	cmd.Flags().BoolVar(&opts.all, "all", false, "print every matching place instead of requiring exactly one")
	cmd.Flags().BoolVar(&opts.types, "types", false, "include place types")
	cmd.Flags().StringVar(&opts.bounds, "bounds", "", `bias results to a viewport: "swLat,swLng|neLat,neLng"`)
	cmd.Flags().StringVar(&opts.region, "region", "", "bias results to a two-letter region code")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: table or json (default: table on a terminal, json otherwise)")

	cmd.AddCommand(newPointCmd(opts))
	return cmd
}

func newPointCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "point ADDRESS...",
		Short: "print only the latitude and longitude of the single matching place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			loc, err := google.NewGeoAdapter(client, opts.timeout).Geocode(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if loc == nil {
				return fmt.Errorf("no place found for %q", strings.Join(args, " "))
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s,%s\n", formatCoord(loc.Lat), formatCoord(loc.Lng))
			return err
		},
	}
}

func (o *options) client(logOutput io.Writer) (*google.Client, error) {
	return google.NewClient(
		google.WithScheme(o.scheme),
		google.WithDomain(o.domain),
		google.WithResource(o.resource),
		google.WithAPIKey(o.apiKey),
		google.WithHTTPClient(&http.Client{Timeout: o.timeout}),
		google.WithLogger(observability.NewCLILogger(logOutput, o.verbose)),
	)
}

func (o *options) query(address string) (domain.Query, error) {
	bounds, err := domain.ParseBounds(o.bounds)
	if err != nil {
		return domain.Query{}, err
	}
	region, err := domain.NormalizeRegion(o.region)
	if err != nil {
		return domain.Query{}, err
	}
	return domain.Query{
		Address:      address,
		ExactlyOne:   !o.all,
		IncludeTypes: o.types,
		Bounds:       bounds,
		Region:       region,
	}, nil
}

func runGeocode(ctx context.Context, stdout, stderr io.Writer, opts *options, address string) error {
	format, err := outputFormat(opts.format, stdout)
	if err != nil {
		return err
	}
	q, err := opts.query(address)
	if err != nil {
		return err
	}
	client, err := opts.client(stderr)
	if err != nil {
		return err
	}

	var results []domain.Result
	if q.ExactlyOne {
		r, err := client.Geocode(ctx, q)
		if err != nil {
			return err
		}
		results = []domain.Result{r}
	} else {
		seq, err := client.GeocodeAll(ctx, q)
		if err != nil {
			return err
		}
		results = slices.Collect(seq)
	}

	resp := domain.NewResponse(domain.GeocodeRequest{Address: address}, slices.Values(results), nil)
	if format == formatTable {
		return writeTable(stdout, resp.Results, q.IncludeTypes)
	}
	return writeJSON(stdout, resp.Results)
}

// outputFormat resolves the --format flag. An empty value picks a table when
// w is a terminal.
func outputFormat(flag string, w io.Writer) (string, error) {
	switch strings.ToLower(flag) {
	case formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	case "":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return formatTable, nil
		}
		return formatJSON, nil
	default:
		return "", fmt.Errorf("%w: --format must be table or json, got %q", domain.ErrInvalidParameter, flag)
	}
}
