package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"xdao.co/reservecid/codecrpc"
	"xdao.co/reservecid/config"
	"xdao.co/reservecid/storage"
	"xdao.co/reservecid/storage/casregistry"
	"xdao.co/reservecid/storage/grpccas"

	_ "xdao.co/reservecid/storage/ipfs"
	_ "xdao.co/reservecid/storage/localfs"
)

const envPrefix = "RESERVECIDD"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath   string
	listen       string
	logLevel     string
	logFormat    string
	maxMsgBytes  int
	backend      string
	listBackends bool
}

func (o *options) add(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.StringVar(&o.listen, "listen", config.DefaultListenAddress, "listen address")
	fs.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "log level")
	fs.StringVar(&o.logFormat, "log-format", config.DefaultLogFormat, "log format: text or json")
	fs.IntVar(&o.maxMsgBytes, "max-msg-bytes", 0, "max gRPC message size in bytes; 0 uses grpc defaults")
	fs.StringVar(&o.backend, "backend", "", "CAS backend name; overrides the storage section of --config")
	fs.BoolVar(&o.listBackends, "list-backends", false, "List supported backends and exit")
	casregistry.RegisterFlags(fs, casregistry.UsageDaemon)
}

func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("reservecidd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	var opts options
	opts.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := config.SetFlagsFromEnv(fs, envPrefix); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if opts.listBackends {
		for _, b := range casregistry.List(casregistry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(out, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	log, err := cfg.NewLogger(logrus.Fields{"component": "reservecidd"})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	cas, closeFn, err := openStore(cfg, opts.backend)
	if err != nil {
		log.WithError(err).Error("failed to open block store")
		return 1
	}
	if closeFn != nil {
		defer func() {
			if err := closeFn(); err != nil {
				log.WithError(err).Warn("failed to close block store")
			}
		}()
	}

	lis, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		log.WithError(err).Error("failed to listen")
		return 1
	}
	defer lis.Close()

	srv := newServer(cfg, log, cas)
	log.WithFields(logrus.Fields{
		"listen":  lis.Addr().String(),
		"storage": cas != nil,
	}).Info("reservecidd serving")
	if err := serve(ctx, srv, lis, log); err != nil {
		log.WithError(err).Error("serve failed")
		return 1
	}
	return 0
}

// serve runs srv on lis until ctx is done or Serve fails. The server is
// stopped before serve returns.
func serve(ctx context.Context, srv *grpc.Server, lis net.Listener, log logrus.FieldLogger) error {
	stopped := make(chan struct{})
	defer func() { <-stopped }()
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(stopped)
		<-serveCtx.Done()
		if ctx.Err() != nil {
			log.Info("shutting down")
		}
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// loadConfig reads --config (if any) and applies explicitly set flags on top.
func loadConfig(fs *pflag.FlagSet, opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if fs.Changed("listen") {
		cfg.ListenAddress = opts.listen
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if fs.Changed("max-msg-bytes") {
		cfg.MaxMsgBytes = opts.maxMsgBytes
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore returns the block store to serve, or nil when none is configured.
func openStore(cfg config.Config, backend string) (storage.CAS, func() error, error) {
	if backend != "" {
		return casregistry.Open(backend, casregistry.UsageDaemon)
	}
	if cfg.Storage != nil {
		return cfg.Storage.Open(casregistry.UsageDaemon, "")
	}
	return nil, nil, nil
}

func newServer(cfg config.Config, log logrus.FieldLogger, cas storage.CAS) *grpc.Server {
	opts := []grpc.ServerOption{grpc.UnaryInterceptor(codecrpc.LoggingInterceptor(log))}
	if cfg.MaxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxMsgBytes), grpc.MaxSendMsgSize(cfg.MaxMsgBytes))
	}
	srv := grpc.NewServer(opts...)
	codecrpc.RegisterCodecServer(srv, &codecrpc.Server{})
	if cas != nil {
		grpccas.RegisterCASServer(srv, &grpccas.Server{CAS: cas})
	}
	return srv
}
