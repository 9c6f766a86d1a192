package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"settlement/internal/domain"
	"settlement/internal/service"
)

//go:embed templates/*.html
var templateFiles embed.FS

const flashCookieName = "settlement_flash"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc       *service.Service
	sessions  *SessionManager
	templates *template.Template
}

func NewHandler(svc *service.Service, sessions *SessionManager) *Handler {
	templates := template.Must(template.ParseFS(templateFiles, "templates/*.html"))
	return &Handler{svc: svc, sessions: sessions, templates: templates}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/import", http.StatusFound)
}

type loginPageData struct {
	Error string
}

func (h *Handler) LoginPage(w http.ResponseWriter, _ *http.Request) {
	h.render(w, "login.html", loginPageData{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "login.html", loginPageData{Error: "用户名或密码错误"})
		return
	}

	user, err := h.svc.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		log.Printf("authenticate: %v", err)
		h.render(w, "login.html", loginPageData{Error: "用户名或密码错误"})
		return
	}
	if user == nil {
		h.render(w, "login.html", loginPageData{Error: "用户名或密码错误"})
		return
	}

	token, expiresAt, err := h.sessions.Issue(user)
	if err != nil {
		log.Printf("issue session: %v", err)
		h.render(w, "login.html", loginPageData{Error: "用户名或密码错误"})
		return
	}
	h.sessions.SetCookie(w, token, expiresAt)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

type importPageData struct {
	Username string
	Flash    string
	Stores   []domain.Store
}

func (h *Handler) ImportPage(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.ListStores(r.Context())
	if err != nil {
		log.Printf("list stores: %v", err)
	}

	data := importPageData{
		Flash:  readFlash(w, r),
		Stores: stores,
	}
	if user := currentUser(r); user != nil {
		data.Username = user.Username
	}
	h.render(w, "import.html", data)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Redirect(w, r, "/import", http.StatusFound)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Redirect(w, r, "/import", http.StatusFound)
		return
	}
	defer file.Close()

	storeID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("store_id")), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/import", http.StatusFound)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		setFlash(w, fmt.Sprintf("导入失败: %v", err))
		http.Redirect(w, r, "/import", http.StatusFound)
		return
	}

	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	_, err = h.svc.ImportSales(r.Context(), service.ImportInput{
		Filename:   header.Filename,
		Content:    content,
		StoreID:    storeID,
		OperatorID: user.ID,
	})
	switch {
	case err == nil:
		setFlash(w, "数据导入成功")
	case errors.Is(err, service.ErrInvalidUpload):
		// Bad extension or empty file: silent redirect, no record created.
	default:
		setFlash(w, fmt.Sprintf("导入失败: %v", err))
	}
	http.Redirect(w, r, "/import", http.StatusFound)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	exportQuery := service.ExportQuery{}
	if raw := strings.TrimSpace(query.Get("store_id")); raw != "" {
		storeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			setFlash(w, "导出失败: 无效的客户编号")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		exportQuery.StoreID = &storeID
	}

	start, err := parseOptionalTime(query.Get("start_date"))
	if err != nil {
		setFlash(w, "导出失败: 无效的开始日期")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	end, err := parseOptionalTime(query.Get("end_date"))
	if err != nil {
		setFlash(w, "导出失败: 无效的结束日期")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	exportQuery.Start = start
	exportQuery.End = end

	result, err := h.svc.ExportSales(r.Context(), exportQuery)
	if err != nil {
		setFlash(w, fmt.Sprintf("导出失败: %v", err))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": result.DownloadName}))
	http.ServeFile(w, r, result.Path)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// Flash messages travel in a short-lived cookie, read and cleared on the
// next page render.
func setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func readFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}

func parseOptionalTime(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			if layout == "2006-01-02" {
				utc := parsed.UTC()
				return &utc, nil
			}
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("invalid time")
}
