package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
	"github.com/p-n-ai/curriculum-designer/internal/designer"
	"github.com/p-n-ai/curriculum-designer/internal/export"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *designer.Session)

// withSession resolves the {id} path value or answers 404.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.registry.Get(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown session"})
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Create()
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type navigateRequest struct {
	To     string `json:"to"`
	Module int    `json:"module"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	var req navigateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	view, err := designer.ParseView(req.To)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	if err := sess.Navigate(view, req.Module); err != nil {
		writeError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	var req curriculum.Request
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	if err := sess.Generate(r.Context(), s.engine, req); err != nil {
		writeError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type answerRequest struct {
	Question int    `json:"question"`
	Option   string `json:"option"`
}

func (s *Server) handleSelectAnswer(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	var req answerRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	res, err := sess.SelectAnswer(req.Question, req.Option)
	if err != nil {
		writeError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	res, err := sess.SubmitQuiz()
	if err != nil {
		writeError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReviewQuiz(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	res, err := sess.ReviewQuiz()
	if err != nil {
		writeError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, nil)
		return
	}
	msgs, err := sess.Chat().Send(r.Context(), req.Text, s.engine, nil)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.FetchMarketTrends(r.Context()))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport renders the current curriculum. format is pdf (the default),
// txt, xlsx, png or json (the laid-out pages); page is 1-based and only read
// for png.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, sess *designer.Session) {
	c := sess.Curriculum()
	if c == nil {
		writeError(w, designer.ErrNoCurriculum, nil)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	doc := export.Build(c, s.layout)

	var (
		buf         bytes.Buffer
		contentType string
		err         error
	)
	switch format {
	case "json":
		writeJSON(w, http.StatusOK, doc)
		return
	case "pdf":
		contentType = "application/pdf"
		err = export.WritePDF(&buf, doc)
		w.Header().Set("X-Page-Count", strconv.Itoa(len(doc.Pages)))
	case "txt":
		contentType = "text/plain; charset=utf-8"
		err = export.WriteText(&buf, doc)
	case "xlsx":
		contentType = xlsxContentType
		err = export.WriteWorkbook(&buf, c)
	case "png":
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, err = strconv.Atoi(p)
			if err != nil {
				writeError(w, fmt.Errorf("%w: page %q", errBadRequest, p), nil)
				return
			}
		}
		contentType = "image/png"
		err = export.RenderPage(&buf, doc, page-1)
		w.Header().Set("X-Page-Count", strconv.Itoa(len(doc.Pages)))
	default:
		writeError(w, fmt.Errorf("%w: unknown format %q", errBadRequest, format), nil)
		return
	}
	if err != nil {
		writeError(w, err, nil)
		return
	}

	slog.Info("curriculum exported", "session_id", sess.ID(), "format", format, "bytes", buf.Len())
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(c, format)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
