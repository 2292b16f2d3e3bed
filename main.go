package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"folio/assetstore"
	"folio/auth"
	"folio/config"
	"folio/db"
	"folio/handlers"
	"folio/lifecycle"
	"folio/logging"
	"folio/metrics"
	"folio/models"
	"folio/processing"
	"folio/storage"
	"folio/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	sessionCookieName     = "token"
	sessionExpirationTime = 30 * 86400 // 30 days
	fetchTimeout          = 30 * time.Second
)

func main() {
	root := &cobra.Command{
		Use:          "folio",
		Short:        "Portfolio admin backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(serveCmd(), coversCmd(), posterCmd(), userCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

// newService wires the pipeline from config. The catalog must be open.
func newService() (*lifecycle.Service, error) {
	gateway, err := assetstore.NewGateway(assetstore.Config{
		CloudName:  config.CLOUDINARY_CLOUD_NAME,
		APIKey:     config.CLOUDINARY_API_KEY,
		APISecret:  config.CLOUDINARY_API_SECRET,
		RootFolder: config.ASSET_ROOT_FOLDER,
	})
	if err != nil {
		return nil, err
	}
	archive, err := storage.NewArchiveFromConfig()
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	if err = assetstore.InitVips(); err != nil {
		logging.Warn("Compression and WebP posters are disabled: %v", err)
	}
	fetcher := processing.NewHTTPFetcher(&http.Client{Timeout: fetchTimeout})
	return &lifecycle.Service{
		DB:             db.Instance,
		Assets:         gateway,
		Covers:         processing.NewCoverComposer(fetcher, config.COVER_CACHE_SIZE),
		Posters:        processing.NewFrameGenerator(processing.NewHeadValidator()),
		Frames:         processing.NewLocalFrameExtractor(config.TMP_DIR),
		Archive:        archive,
		StoreOriginals: config.STORE_ORIGINALS,
	}, nil
}

func openCatalog() {
	db.Init(config.MYSQL_DSN, config.SQLITE_FILE)
	models.Init()
}

func serve() error {
	openCatalog()
	service, err := newService()
	if err != nil {
		return err
	}

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	router.MaxMultipartMemory = 32 << 20
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(metrics.Middleware)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.CORS_ORIGIN, ","),
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	sessionKey := config.SESSION_KEY
	if sessionKey == "" {
		logging.Warn("SESSION_KEY is not set, sessions will not survive a restart")
		sessionKey = utils.RandSalt(64)
	}
	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(sessionKey))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: sessionExpirationTime, HttpOnly: true})
	router.Use(sessions.Sessions(sessionCookieName, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	router.Use(utils.CacheControl(utils.CacheNoCache))

	router.GET("/metrics", metrics.Handler())
	handlers.New(service, config.MAX_UPLOAD_MB).Register(&auth.Router{Base: router})

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	return fmt.Errorf("server stopped: %w", err)
}

func coversCmd() *cobra.Command {
	var albumID uint64
	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Regenerate album covers",
		RunE: func(cmd *cobra.Command, args []string) error {
			openCatalog()
			service, err := newService()
			if err != nil {
				return err
			}
			ctx := context.Background()
			if albumID != 0 {
				result := service.RegenerateAlbumCover(ctx, albumID)
				if !result.Success {
					return result.Err
				}
				logging.Info("%s", result.Message)
				return nil
			}
			done, err := service.RegenerateAllCovers(ctx)
			logging.Info("Regenerated %d album covers", done)
			return err
		},
	}
	cmd.Flags().Uint64Var(&albumID, "album", 0, "only this album")
	return cmd
}

func posterCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "poster",
		Short: "Regenerate the hero poster from the stored video",
		RunE: func(cmd *cobra.Command, args []string) error {
			openCatalog()
			service, err := newService()
			if err != nil {
				return err
			}
			result := service.RegeneratePoster(context.Background(), force)
			if !result.Success {
				return result.Err
			}
			logging.Info("%s", result.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing poster")
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage admin accounts",
	}
	var name, email, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			openCatalog()
			user, err := models.UserCreate(name, email, password)
			if err != nil {
				return err
			}
			logging.Info("Created user %d (%s)", user.ID, user.Email)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&password, "password", "", "login password")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)
	return cmd
}
