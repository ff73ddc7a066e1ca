package bot

// Keyboard button labels and free-text triggers.
const (
	textAgree   = "Согласен"
	textDecline = "Не согласен"
	textCancel  = "Отмена"
)

// Replies sent by the bot.
const (
	textCallAdmin = "Обратитесь к администратору. Контакты администратора есть в разделе /help."

	textAgreement = "Для доступа в группу нужно подтвердить ваш номер телефона. " +
		"Нажмите «Согласен», чтобы поделиться контактом, или «Не согласен», чтобы отказаться."

	textDeclined = "К сожалению, мы не можем в автоматическом режиме зарегистрировать вас " +
		"в группе без номера телефона.\n" + textCallAdmin

	textSharePhone = "Нажмите кнопку «Поделиться контактом», чтобы отправить ваш номер телефона."

	textNotWhitelisted = "Такой номер не зарегистрирован. Если вы действующий член, " +
		"зайдите в личный кабинет на сайте общества и укажите ваш номер телефона " +
		"в соответствующем поле. После этого обратитесь к администратору."

	textConflict = "По такому номеру уже зарегистрирован другой пользователь. " +
		"Возможно, к этому номеру был привязан другой телеграм-аккаунт. " +
		"Подтвердите, что вы хотите зарегистрироваться в группе с этого аккаунта (Да/Нет)."

	textKeptPrevious = "Хорошо. Вы можете продолжать пользоваться группой с ранее " +
		"зарегистрированного аккаунта."

	textAnswerYesNo = "Вы должны ответить либо «Да», либо «Нет»."

	textRegistered = "Вы успешно зарегистрированы!\nПройдите по этой ссылке: %s"

	textJoinRejected = "Я не могу принять вас в группу, так как ваш номер телефона " +
		"не зарегистрирован. " + textCallAdmin

	textCancelled     = "Действие отменено"
	textInternalError = "Произошла внутренняя ошибка. Попробуйте позже."
	textNoTargetGroup = "Целевая группа ещё не выбрана."

	textChooseGroup   = "Выберите группу, которую будет администрировать бот."
	textTargetChanged = "Целевая группа для администрирования изменена."
	textNoGroups      = "Бот ещё не добавлен ни в одну группу."

	textAskAdminID    = "Введите ID пользователя, которого хотите сделать администратором."
	textAskDeleteID   = "Введите ID пользователя, которого хотите удалить."
	textAdminGranted  = "Пользователь %d теперь администратор."
	textUserDeleted   = "Пользователь %d удален."
	textUserNotFound  = "Пользователь не найден."
	textInvalidUserID = "ID пользователя должен быть числом."

	textImportFailed = "При обработке файла возникла ошибка."
	textImportDone   = "В базу данных добавлено %d телефонов."

	textHelp = "Бот управляет доступом в закрытую группу по белому списку номеров телефонов.\n\n" +
		"/grouplink — получить ссылку на группу\n" +
		"/id — показать ваш ID\n" +
		"/help — эта справка\n\n" +
		"Если бот вас не пропускает, обратитесь к администратору группы."

	textHelpAdmin = "\nКоманды администратора:\n" +
		"/select_group — выбрать управляемую группу\n" +
		"/add_admin — назначить администратора\n" +
		"/delete_user — удалить пользователя\n" +
		"Чтобы загрузить белый список, отправьте xlsx-файл со столбцом «Телефон»."
)
