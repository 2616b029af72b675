package chi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsnap/internal/domain"
	logpkg "github.com/kailas-cloud/prodsnap/internal/logger"
)

const mib = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers maps domain sentinels to HTTP responses, most specific first.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, ErrorCodeProductNotFound,
			func(error) string { return "商品未找到" }),
		sentinelHandler(domain.ErrUnsupportedMediaType, http.StatusBadRequest, ErrorCodeUnsupportedMediaType,
			mediaTypeDetail),
		sentinelHandler(domain.ErrFileTooLarge, http.StatusBadRequest, ErrorCodeFileTooLarge,
			fileTooLargeDetail),
		sentinelHandler(domain.ErrFileRequired, http.StatusBadRequest, ErrorCodeFileRequired,
			func(error) string { return "请上传文件 (file)" }),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery,
			invalidQueryDetail),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusServiceUnavailable, ErrorCodeCatalogUnavailable,
			func(error) string { return "商品目录不可用" }),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode, detail func(error) string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, detail(err))
		return true
	}
}

func mediaTypeDetail(err error) string {
	allowed := "image/jpeg, image/png, image/webp"
	var mte *domain.MediaTypeError
	if errors.As(err, &mte) && len(mte.Allowed) > 0 {
		allowed = strings.Join(mte.Allowed, ", ")
	}
	return "不支持的文件类型。请上传: " + allowed
}

func fileTooLargeDetail(err error) string {
	var tle *domain.FileTooLargeError
	if !errors.As(err, &tle) || tle.Limit <= 0 {
		return "文件大小超过限制"
	}
	if tle.Limit%mib == 0 {
		return fmt.Sprintf("文件大小超过%dMB限制", tle.Limit/mib)
	}
	return fmt.Sprintf("文件大小超过%d字节限制", tle.Limit)
}

// invalidQueryDetail exposes the validation message that follows the sentinel prefix.
func invalidQueryDetail(err error) string {
	msg := err.Error()
	prefix := domain.ErrInvalidQuery.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return "无效的查询参数: " + msg[i+len(prefix):]
	}
	return "无效的查询参数"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, detail string) {
	writeJSON(w, status, ErrorResponse{
		Detail:    detail,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
	})
}
