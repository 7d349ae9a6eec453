package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/akhil-is-watching/securechain/internal/documents"
	kerrors "github.com/akhil-is-watching/securechain/internal/errors"
	logger "github.com/akhil-is-watching/securechain/internal/logging"
)

// Store is what the server needs from a catalog backend.
type Store interface {
	CreateDocument(ctx context.Context, doc *documents.Document) error
	GetDocument(ctx context.Context, id string) (*documents.Document, error)
	ListDocuments(ctx context.Context, address string) (*documents.Listing, error)
}

// Server exposes a Store over the REST API that Client speaks.
type Server struct {
	Echo   *echo.Echo
	store  Store
	logger logger.Logger
}

func NewServer(store Store, log logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))

	s := &Server{Echo: e, store: store, logger: log}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.POST("/document", s.postDocument(documents.KindUpload))
	s.Echo.POST("/share", s.postDocument(documents.KindShare))
	s.Echo.GET("/document/details/:id", s.getDocument)
	s.Echo.GET("/document/:address", s.listDocuments)
}

// Start serves on address until ctx is done.
func (s *Server) Start(ctx context.Context, address string) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.Echo.Start(address)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Echo.Shutdown(context.Background())
	}
}

type createdResponse struct {
	ID string `json:"id"`
}

func (s *Server) postDocument(kind documents.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var doc documents.Document
		if err := c.Bind(&doc); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		if doc.Type != kind {
			return echo.NewHTTPError(http.StatusBadRequest, "expected a "+string(kind)+" record")
		}

		if err := s.store.CreateDocument(c.Request().Context(), &doc); err != nil {
			return s.httpError(err)
		}
		s.logger.Infof("catalog: stored %s record %s", doc.Type, doc.ID)
		return c.JSON(http.StatusCreated, createdResponse{ID: doc.ID})
	}
}

func (s *Server) getDocument(c echo.Context) error {
	doc, err := s.store.GetDocument(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) listDocuments(c echo.Context) error {
	listing, err := s.store.ListDocuments(c.Request().Context(), c.Param("address"))
	if err != nil {
		return s.httpError(err)
	}
	return c.JSON(http.StatusOK, listing)
}

func (s *Server) httpError(err error) error {
	switch {
	case errors.Is(err, kerrors.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, kerrors.ErrInvalidRecord), errors.Is(err, kerrors.ErrInvalidPublicKey):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		s.logger.Errorf("catalog: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
