package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"

	"github.com/trackedit/trackedit/internal/api"
	"github.com/trackedit/trackedit/internal/handlers"
	"github.com/trackedit/trackedit/internal/model/convert"
)

// uploadSession sends the stored session to the track viewer.
func (a *app) uploadSession(session, tag string, stdout io.Writer) error {
	serverURL := viper.GetString("api.serverUrl")
	if serverURL == "" {
		return errors.New("upload: api.serverUrl is not set")
	}

	if _, err := a.dispatch(session, handlers.CmdSessionLoad, nil); err != nil {
		return err
	}
	result, err := a.dispatch(session, handlers.CmdTrackInfo, nil)
	if err != nil {
		return err
	}
	info, ok := result.(handlers.TrackInfo)
	if !ok {
		return fmt.Errorf("upload: unexpected track info %T", result)
	}
	m, err := a.service.Manager(session)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(convert.SessionToRecord(session, m.Session())); err != nil {
		return fmt.Errorf("upload: encoding session: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("upload: compressing session: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := api.New(serverURL, viper.GetString("api.apiKey"))
	if err := client.Healthcheck(ctx); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	size := buf.Len()
	err = client.Upload(ctx, session+".json.gz", &buf, api.Metadata{
		Session:      session,
		NumPoints:    info.NumPoints,
		LengthMetres: info.LengthMetres,
		Tag:          tag,
	})
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	a.logger.Info("Session uploaded", "session", session, "server", serverURL, "bytes", size)
	_, err = fmt.Fprintf(stdout, "uploaded %s (%d points)\n", session, info.NumPoints)
	return err
}
