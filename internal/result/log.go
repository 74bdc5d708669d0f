package result

import "go.uber.org/zap"

// Log başarısız bir aksiyonu loglar. Doğrulama ve iş kuralı hataları
// beklenen akışın parçası olduğundan warn seviyesinde kalır.
func Log(log *zap.Logger, action string, err error) {
	if err == nil || log == nil {
		return
	}
	kind := KindOf(err)
	fields := []zap.Field{zap.String("action", action), zap.String("kind", kind.String()), zap.Error(err)}
	if kind == KindDatabase {
		log.Error(action+" error", fields...)
		return
	}
	log.Warn(action+" rejected", fields...)
}
