package prompts

const analysisSpec = `Ответь JSON-объектом строго следующей структуры:

{
  "topic_category": <номер категории>,
  "criticality_level": <1-4>,
  "response_style": <1-4>,
  "processing_time_hours": <1-720>,
  "sla_deadline": "<ГГГГ-ММ-ДД ЧЧ:ММ:СС>",
  "summary": "<краткое содержание>"
}

Ограничения полей:
- topic_category: номер ровно одной категории из перечисленного списка.
- criticality_level: 1 (Низкий), 2 (Средний), 3 (Высокий), 4 (Критический).
- response_style: 1 (Строгий официальный стиль), 2 (Деловой корпоративный
  стиль), 3 (Клиентоориентированный вариант), 4 (Краткий информационный ответ).
- processing_time_hours: время на обработку в часах согласно регламенту.
- sla_deadline: можно опустить, тогда срок будет рассчитан по критичности.
- summary: не более 500 символов.

Требования к ответу:
- Только валидный JSON, без markdown-разметки и пояснений.`

const replySpec = `Ответь JSON-объектом строго следующей структуры:

{
  "response_email": "<текст ответного письма>"
}

Ограничения:
- response_email: готовый к отправке текст письма, не более 10000 символов.
- Только валидный JSON, без markdown-разметки.`

const questionSpec = `Ответь JSON-объектом строго следующей структуры:

{
  "response": "<ответ на вопрос>"
}

Ограничения:
- response: не более 10000 символов.
- Отвечай только на основании текста письма и переданного контекста.
- Если в письме нет ответа, так и скажи.
- Только валидный JSON, без markdown-разметки.`
