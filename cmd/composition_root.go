package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	httpin "harvestlog/internal/adapters/in/http"
	"harvestlog/internal/adapters/in/ws"
	"harvestlog/internal/adapters/out/geolocation"
	"harvestlog/internal/adapters/out/memory/chatstore"
	"harvestlog/internal/adapters/out/memory/orderstore"
	"harvestlog/internal/adapters/out/osrm"
	"harvestlog/internal/adapters/out/postgres"
	"harvestlog/internal/adapters/out/postgres/orderjournal"
	"harvestlog/internal/adapters/out/redis/locationcache"
	"harvestlog/internal/core/application/routes"
	"harvestlog/internal/core/application/tracker"
	"harvestlog/internal/core/application/usecases/commands"
	"harvestlog/internal/core/application/usecases/queries"
	"harvestlog/internal/core/ports"
	"harvestlog/internal/jobs"
	"harvestlog/internal/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// CompositionRoot owns the session singletons and builds handlers on demand.
type CompositionRoot struct {
	configs Config
	logger  *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	gormDB *gorm.DB
	rdb    *redis.Client

	deviceFeed *geolocation.DeviceFeed
	tracker    *tracker.LocationTracker
	routes     *routes.RouteProvider

	chats     *chatstore.Store
	lifecycle *commands.OrderLifecycle
	announcer *commands.OrderAnnouncer
}

func NewCompositionRoot(configs Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		configs:  configs,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.metrics = metrics.New(c.registry)

	var journal ports.OrderJournal
	if configs.JournalEnabled() {
		db, err := postgres.Open(configs.Postgres())
		if err != nil {
			return nil, err
		}
		if err = orderjournal.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate order journal: %w", err)
		}
		c.gormDB = db
		journal = orderjournal.NewGormOrderJournal(db)
	}

	var publisher ports.LocationPublisher
	if configs.LocationCacheEnabled() {
		c.rdb = redis.NewClient(&redis.Options{
			Addr:     configs.RedisAddr,
			Password: configs.RedisPassword,
			DB:       configs.RedisDB,
		})
		cache, err := locationcache.New(c.rdb, configs.RedisTTL)
		if err != nil {
			return nil, err
		}
		publisher = cache
	}

	var geolocator ports.Geolocator = geolocation.Unsupported{}
	if configs.GeolocationEnabled {
		c.deviceFeed = geolocation.NewDeviceFeed()
		geolocator = c.deviceFeed
	}

	trackerCfg := tracker.DefaultConfig()
	trackerCfg.StepSchedule = configs.TrackingStepSchedule
	trackerCfg.StepDegrees = configs.TrackingStepDegrees
	trackerCfg.ArrivalDegrees = configs.TrackingArrivalDegrees
	trackerCfg.GeolocationTimeout = configs.GeolocationTimeout
	trackerCfg.GeolocationMaxAge = configs.GeolocationMaxAge
	trackerCfg.FallbackLat = configs.FallbackLat
	trackerCfg.FallbackLng = configs.FallbackLng

	t, err := tracker.NewLocationTracker(trackerCfg, geolocator, publisher, c.metrics, logger)
	if err != nil {
		return nil, err
	}
	c.tracker = t

	routeClient, err := osrm.NewClient(configs.RoutingBaseURL,
		osrm.WithHTTPClient(&http.Client{Timeout: configs.RoutingTimeout}))
	if err != nil {
		return nil, err
	}
	c.routes = routes.NewRouteProvider(routeClient, configs.RouteThrottle, c.metrics, logger, nil)

	c.chats = chatstore.New(configs.ChatFloodInterval)
	c.lifecycle = commands.NewOrderLifecycle(orderstore.New(orderstore.DefaultCapacity), journal, c.metrics, logger, nil)
	c.announcer = commands.NewOrderAnnouncer(c.chats, c.metrics, logger, nil)

	return c, nil
}

func (c *CompositionRoot) Tracker() *tracker.LocationTracker {
	return c.tracker
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.lifecycle, c.tracker, c.logger)
}

func (c *CompositionRoot) CreateAssignTransporterCommandHandler() commands.AssignTransporterCommandHandler {
	return commands.NewAssignTransporterCommandHandler(c.lifecycle, c.chats, c.announcer, c.logger)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.lifecycle, c.announcer, c.tracker)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.lifecycle, c.announcer, c.tracker)
}

func (c *CompositionRoot) CreateClearOrderCommandHandler() commands.ClearOrderCommandHandler {
	return commands.NewClearOrderCommandHandler(c.lifecycle, c.chats, c.tracker, c.logger)
}

func (c *CompositionRoot) CreateSendChatMessageCommandHandler() commands.SendChatMessageCommandHandler {
	return commands.NewSendChatMessageCommandHandler(c.lifecycle, c.chats, c.metrics, nil)
}

func (c *CompositionRoot) CreateGetActiveOrderQueryHandler() queries.GetActiveOrderQueryHandler {
	return queries.NewGetActiveOrderQueryHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateGetChatMessagesQueryHandler() queries.GetChatMessagesQueryHandler {
	return queries.NewGetChatMessagesQueryHandler(c.lifecycle, c.chats)
}

// CreateGetOrderHistoryQueryHandler returns nil when the journal is disabled.
func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() httpin.HistoryReader {
	if c.gormDB == nil {
		return nil
	}
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		AssignTransporter: c.CreateAssignTransporterCommandHandler(),
		TransitionOrder:   c.CreateTransitionOrderCommandHandler(),
		CancelOrder:       c.CreateCancelOrderCommandHandler(),
		ClearOrder:        c.CreateClearOrderCommandHandler(),
		SendChatMessage:   c.CreateSendChatMessageCommandHandler(),
		GetActiveOrder:    c.CreateGetActiveOrderQueryHandler(),
		GetChatMessages:   c.CreateGetChatMessagesQueryHandler(),
		History:           c.CreateGetOrderHistoryQueryHandler(),
	}, c.tracker, c.routes, c.logger)
}

// CreateDevicePositionHandler returns nil when geolocation is disabled.
func (c *CompositionRoot) CreateDevicePositionHandler() http.Handler {
	if c.deviceFeed == nil {
		return nil
	}
	return ws.NewDevicePositionHandler(c.deviceFeed, c.configs.WSAllowedOrigins, c.logger)
}

func (c *CompositionRoot) CreateMetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	list := []jobs.Job{
		jobs.NewRouteRefreshJob(c.lifecycle, c.tracker, c.routes, c.logger),
	}
	if c.configs.DemoDispatch {
		list = append(list, jobs.NewDemoDispatchJob(
			c.lifecycle,
			c.tracker,
			c.CreateAssignTransporterCommandHandler(),
			c.CreateTransitionOrderCommandHandler(),
			c.announcer,
			nil,
			c.logger,
		))
	}
	return jobs.NewJobManager(list...)
}

// Close releases the external connections.
func (c *CompositionRoot) Close() error {
	var errs []error
	if c.rdb != nil {
		errs = append(errs, c.rdb.Close())
	}
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
