package main

import (
	"os"
	"strconv"
	"time"

	"github.com/advdv/bdispatch"
	"github.com/advdv/bdispatch/bdapp"
	"github.com/advdv/bdispatch/s3fs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// serveConfig holds the flags of the serve command.
type serveConfig struct {
	dir         string
	bucket      string
	prefix      string
	port        int
	serviceName string
	chunkSize   string
	maxAge      time.Duration
	noCache     bool
	noRange     bool
	allowHidden bool
}

func serveCmd() *cobra.Command {
	var cfg serveConfig

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve a folder or bucket",
		Long: `Serve the files below dir, or below --prefix in --bucket. GET and HEAD are
answered, other methods get a 405. Hidden files are refused unless --allow-hidden is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.dir = "."
			if len(args) > 0 {
				cfg.dir = args[0]
			}

			environ, err := cfg.environ(cmd)
			if err != nil {
				return err
			}

			bdapp.NewApp[bdapp.BaseEnvironment](cfg.routing, bdapp.WithEnv(environ)).Run()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.bucket, "bucket", "", "serve from this S3 bucket instead of a folder")
	f.StringVar(&cfg.prefix, "prefix", "", "key prefix within the bucket")
	f.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (BD_PORT)")
	f.StringVar(&cfg.serviceName, "service-name", "bdispatch", "service name for logs and traces (BD_SERVICE_NAME)")
	f.StringVar(&cfg.chunkSize, "chunk-size", "", `size of the pieces files are sent in, e.g. "256KiB" (BD_CHUNK_SIZE)`)
	f.DurationVar(&cfg.maxAge, "max-age", 0, "let clients cache files for this long")
	f.BoolVar(&cfg.noCache, "no-cache", false, "do not send validators or answer conditional requests")
	f.BoolVar(&cfg.noRange, "no-range", false, "ignore Range headers")
	f.BoolVar(&cfg.allowHidden, "allow-hidden", false, "serve files whose name starts with a dot")
	cmd.MarkFlagsMutuallyExclusive("no-cache", "max-age")

	return cmd
}

// environ turns the flags into environment overrides. Flags left at their default only apply when
// the environment does not set the variable either.
func (cfg serveConfig) environ(cmd *cobra.Command) (map[string]string, error) {
	vars := map[string]string{}

	if cmd.Flags().Changed("port") {
		vars["BD_PORT"] = strconv.Itoa(cfg.port)
	} else {
		vars["BD_PORT"] = envOr("BD_PORT", strconv.Itoa(cfg.port))
	}

	if cmd.Flags().Changed("service-name") {
		vars["BD_SERVICE_NAME"] = cfg.serviceName
	} else {
		vars["BD_SERVICE_NAME"] = envOr("BD_SERVICE_NAME", cfg.serviceName)
	}

	if cfg.chunkSize != "" {
		n, err := humanize.ParseBytes(cfg.chunkSize)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid --chunk-size %q", cfg.chunkSize)
		}
		vars["BD_CHUNK_SIZE"] = strconv.FormatUint(n, 10)
	}

	return vars, nil
}

func (cfg serveConfig) fileSystem(awsCfg aws.Config) (bdispatch.FileSystem, string) {
	if cfg.bucket == "" {
		return bdispatch.OSFS{}, cfg.dir
	}

	return s3fs.New(s3.NewFromConfig(awsCfg), cfg.bucket, s3fs.WithPrefix(cfg.prefix)), "/"
}

// routing builds the root target of the served files.
func (cfg serveConfig) routing(rt *bdapp.Runtime[bdapp.BaseEnvironment], awsCfg aws.Config) bdispatch.Target {
	fsys, root := cfg.fileSystem(awsCfg)

	opts := rt.FileOptions()
	opts.FS = fsys
	opts.Cache = !cfg.noCache
	opts.MaxAge = cfg.maxAge
	opts.DisableRange = cfg.noRange

	folder := bdispatch.NewFolderHandler(root, bdispatch.FolderOptions{
		FileOptions: opts,
		AllowHidden: cfg.allowHidden,
	})

	return bdispatch.NewMethodRouter(map[string]bdispatch.Target{
		"GET":  folder,
		"HEAD": folder,
	})
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
