package i18n

func init() {
	RegisterCatalog("ru-RU", NewCatalog("ru-RU", map[Code]string{
		"UNKNOWN":         "произошла непредвиденная ошибка",
		"UNAUTHENTICATED": "войдите, чтобы продолжить",

		"WORKSPACE_NOT_MEMBER":     "вы не являетесь участником этого рабочего пространства",
		"WORKSPACE_ADMIN_REQUIRED": "это действие доступно только администратору рабочего пространства",
		"INVITE_CODE_INVALID":      "неверный код приглашения",
		"ALREADY_MEMBER":           "вы уже являетесь участником",
		"LAST_ADMIN":               "невозможно понизить статус единственного администратора",
		"LAST_MEMBER":              "невозможно удалить единственного участника",
		"MEMBER_INVALID_ROLE":      "неизвестная роль участника {{.Role}}",

		"WORKSPACE_NAME_EMPTY": "название рабочего пространства обязательно",
		"PROJECT_NAME_EMPTY":   "название проекта обязательно",

		"TASK_NAME_EMPTY":       "название задачи обязательно",
		"TASK_INVALID_STATUS":   "неизвестный статус задачи {{.Status}}",
		"TASK_INVALID_POSITION": "позиция задачи вне допустимого диапазона",
		"TASK_INVALID_DUE_DATE": "срок должен быть меткой времени в формате RFC 3339",
		"INVALID_ASSIGNEE":      "пользователь {{.UserID}} не является участником рабочего пространства {{.WorkspaceID}}",
		"CROSS_WORKSPACE_MOVE":  "нельзя переместить задачу в проект из другого рабочего пространства",
		"REORDER_EMPTY":         "пакет изменения порядка должен содержать хотя бы один элемент",

		"FILTER_INVALID":     "неверное выражение фильтра",
		"PAGE_TOKEN_INVALID": "неверный токен страницы",

		"NOT_FOUND":     "запрошенный ресурс не найден",
		"STORE_FAILURE": "хранилище временно недоступно",
	}))
}
