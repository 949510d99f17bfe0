package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ridepool/client-go/api/rest"
	"github.com/ridepool/client-go/api/transport"
	"github.com/ridepool/client-go/internal/config"
	"github.com/ridepool/client-go/internal/infrastructure/buffer"
	"github.com/ridepool/client-go/internal/infrastructure/monitor"
	"github.com/ridepool/client-go/internal/services"
	"github.com/ridepool/client-go/internal/services/lifecycle"
	"github.com/ridepool/client-go/pkg/authstate"
	"github.com/ridepool/client-go/pkg/logger"
	"github.com/ridepool/client-go/repository"
	boltRepo "github.com/ridepool/client-go/repository/bolt"
	fileRepo "github.com/ridepool/client-go/repository/file"
	memoryRepo "github.com/ridepool/client-go/repository/memory"
	redisRepo "github.com/ridepool/client-go/repository/redis"
	authUC "github.com/ridepool/client-go/usecase/auth"
	profileUC "github.com/ridepool/client-go/usecase/profile"
	ridesUC "github.com/ridepool/client-go/usecase/rides"

	redislib "github.com/redis/go-redis/v9"
)

const usage = `usage: ridepool <command> [flags]

commands:
  login     -phone -password          sign in and store the session
  register  -name -phone -password    create an account and sign in
  logout                              clear the stored session
  status                              evaluate the session and print the result
  me                                  show the signed-in user's profile
  rides                               list upcoming rides
  ride      -id                       show one ride
  create    -pickup-lat ... -cost     publish a new ride
  join      -ride                     request to join a ride
  requests  -ride                     list join requests for an owned ride
  resolve   -ride -request -action    accept or reject a join request
  history                             list your join requests
  watch                               follow auth state changes until interrupted
`

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *lifecycle.Manager
	state   *authstate.Hub
	api     *rest.Client
	auth    *authUC.UseCase
	profile *profileUC.UseCase
	rides   *ridesUC.UseCase
	queue   *services.BufferProcessor
	monitor *monitor.Monitor
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	a, err := build(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("startup failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.manager.Listen(cancel)

	exitCode := 0
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "ridepool: %v\n", err)
		exitCode = 1
	}

	if err := a.manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("shutdown error", zap.Error(err))
	}
	os.Exit(exitCode)
}

func build(cfg *config.Config, zapLogger *zap.Logger) (*app, error) {
	manager := lifecycle.New(10*time.Second, zapLogger)

	sessions, err := openSessionRepository(cfg, manager)
	if err != nil {
		return nil, err
	}

	api := rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout, zapLogger)
	state := authstate.NewHub(zapLogger)
	manager.Register("authstate", func(ctx context.Context) error {
		state.Close()
		return nil
	})

	auth := authUC.New(sessions, api, state, zapLogger)

	a := &app{
		cfg:     cfg,
		logger:  zapLogger,
		manager: manager,
		state:   state,
		api:     api,
		auth:    auth,
		profile: profileUC.New(auth, api, zapLogger),
	}

	if cfg.Buffer.Enabled {
		store, err := buffer.Open(cfg.Buffer.Path)
		if err != nil {
			return nil, err
		}
		manager.Register("queue_store", func(ctx context.Context) error {
			return store.Close()
		})

		a.monitor = monitor.New(api, cfg.Buffer.SyncInterval, zapLogger)
		a.queue = services.NewBufferProcessor(store, a.monitor, auth, api, zapLogger, services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			MaxRetries: cfg.Buffer.MaxRetry,
		})
		a.rides = ridesUC.New(auth, api, services.NewBufferBridge(a.queue), zapLogger)
	} else {
		a.rides = ridesUC.New(auth, api, nil, zapLogger)
	}

	return a, nil
}

func openSessionRepository(cfg *config.Config, manager *lifecycle.Manager) (repository.SessionRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memoryRepo.NewSessionRepository(), nil

	case config.BackendFile:
		return fileRepo.NewSessionRepository(cfg.Storage.FilePath), nil

	case config.BackendBolt:
		repo, closeFn, err := boltRepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		manager.Register("session_store", func(ctx context.Context) error {
			return closeFn()
		})
		return repo, nil

	case config.BackendRedis:
		opts, err := redislib.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		if cfg.Redis.Password != "" {
			opts.Password = cfg.Redis.Password
		}
		if cfg.Redis.DB != 0 {
			opts.DB = cfg.Redis.DB
		}
		client := redislib.NewClient(opts)
		manager.Register("session_store", func(ctx context.Context) error {
			return client.Close()
		})
		return redisRepo.NewSessionRepository(client, cfg.Redis.Namespace), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		phone := fs.String("phone", "", "phone number")
		password := fs.String("password", "", "password")
		fs.Parse(args)
		session, err := a.auth.LoginWithPassword(ctx, *phone, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", session.FullName, session.PhoneNumber)
		return nil

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		name := fs.String("name", "", "full name")
		phone := fs.String("phone", "", "phone number")
		password := fs.String("password", "", "password")
		fs.Parse(args)
		session, err := a.auth.Register(ctx, *name, *phone, *password)
		if err != nil {
			return err
		}
		fmt.Printf("account created, signed in as %s\n", session.FullName)
		return nil

	case "logout":
		if err := a.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "status":
		if a.auth.Evaluate(ctx) {
			fmt.Println("authenticated")
		} else {
			fmt.Println("not authenticated")
		}
		return nil

	case "me":
		user, err := a.profile.Get(ctx)
		if err != nil {
			return err
		}
		return printJSON(user)

	case "rides":
		rides, err := a.rides.Upcoming(ctx)
		if err != nil {
			return err
		}
		return printJSON(rides)

	case "ride":
		fs := flag.NewFlagSet("ride", flag.ExitOnError)
		id := fs.Int64("id", 0, "ride id")
		fs.Parse(args)
		ride, err := a.rides.Details(ctx, *id)
		if err != nil {
			return err
		}
		return printJSON(ride)

	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		req := transport.RideCreateRequest{}
		fs.Float64Var(&req.PickupLatitude, "pickup-lat", 0, "pickup latitude")
		fs.Float64Var(&req.PickupLongitude, "pickup-lng", 0, "pickup longitude")
		fs.Float64Var(&req.DestinationLatitude, "dest-lat", 0, "destination latitude")
		fs.Float64Var(&req.DestinationLongitude, "dest-lng", 0, "destination longitude")
		fs.IntVar(&req.TotalSeats, "seats", 1, "total seats")
		fs.Float64Var(&req.TotalCost, "cost", 0, "total cost")
		departure := fs.String("departure", "", "departure time (RFC3339)")
		fs.Parse(args)
		req.DepartureDatetime = *departure
		ride, err := a.rides.Create(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(ride)

	case "join":
		fs := flag.NewFlagSet("join", flag.ExitOnError)
		rideID := fs.Int64("ride", 0, "ride id")
		fs.Parse(args)
		request, err := a.rides.RequestJoin(ctx, *rideID)
		if err != nil {
			return err
		}
		return printJSON(request)

	case "requests":
		fs := flag.NewFlagSet("requests", flag.ExitOnError)
		rideID := fs.Int64("ride", 0, "ride id")
		fs.Parse(args)
		requests, err := a.rides.RequestsForRide(ctx, *rideID)
		if err != nil {
			return err
		}
		return printJSON(requests)

	case "resolve":
		fs := flag.NewFlagSet("resolve", flag.ExitOnError)
		rideID := fs.Int64("ride", 0, "ride id")
		requestID := fs.Int64("request", 0, "request id")
		action := fs.String("action", ridesUC.ActionAccept, "accept or reject")
		fs.Parse(args)
		if err := a.rides.Resolve(ctx, *rideID, *requestID, *action); err != nil {
			return err
		}
		fmt.Printf("request %d %sed\n", *requestID, *action)
		return nil

	case "history":
		history, err := a.rides.RequestHistory(ctx)
		if err != nil {
			return err
		}
		return printJSON(history)

	case "watch":
		return a.watch(ctx)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// watch runs the background services and follows auth state transitions
// until the process is interrupted.
func (a *app) watch(ctx context.Context) error {
	if a.monitor != nil {
		a.monitor.Start()
		a.manager.Register("monitor", func(ctx context.Context) error {
			a.monitor.Stop()
			return nil
		})
	}
	if a.queue != nil {
		a.queue.Start()
		a.manager.Register("queue_processor", func(ctx context.Context) error {
			a.queue.Stop(ctx)
			return nil
		})
	}

	interval := a.cfg.Refresh.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	refresher := services.NewRefresher(a.auth, interval, a.logger)
	refresher.Start()
	a.manager.Register("refresher", func(ctx context.Context) error {
		refresher.Stop()
		return nil
	})

	updates, cancel := a.state.Subscribe()
	defer cancel()

	a.auth.Evaluate(ctx)
	for {
		select {
		case authenticated, ok := <-updates:
			if !ok {
				return nil
			}
			fmt.Printf("%s authenticated=%t queued=%d\n",
				time.Now().Format(time.RFC3339), authenticated, a.queue.Size())
		case <-ctx.Done():
			return nil
		}
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
