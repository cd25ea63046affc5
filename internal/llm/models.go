package llm

// MaxReplyTokens bounds the model output; the prompt itself asks for
// at most 400 characters, this is the hard stop on top of it
const MaxReplyTokens = 1024

// SystemInstruction is the fixed directive for every reply generation.
// It pins the register, the length cap, bilingual auto-detection and the
// verbatim image-generation sentinel.
const SystemInstruction = `Ты — дерзкий, саркастичный бот.
Отвечай КРАЙНЕ коротко — максимум 400 символов.
Язык пользователя: русский или азербайджанский — подстраивайся автоматически.
Если пользователь просит картинку — отвечай ТОЛЬКО строкой:
GENERATE_IMAGE: [очень подробный промпт на английском для 4K]
Ничего больше не пиши в этом случае.`
