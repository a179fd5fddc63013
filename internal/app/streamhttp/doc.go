// Package streamhttp реализует HTTP-интерфейс сервиса стриминга видео поверх хранилища.
// Основные эндпоинты (префикс по умолчанию /api/videos):
//   - GET  {prefix}/{key} — отдаёт ресурс целиком (200) или один диапазон по заголовку Range (206).
//   - HEAD {prefix}/{key} — те же заголовки без тела.
//   - POST {prefix}/upload — принимает multipart-форму с видео и сохраняет его в хранилище.
//   - POST /admin/gc — вручную удаляет зависшие незавершённые загрузки.
//   - GET  /health — агрегированная статистика по каталогу данных.
//   - GET  /metrics — метрики Prometheus.
//
// Поддерживается только один непрерывный диапазон на запрос; multi-range отвергается с 416.
package streamhttp
