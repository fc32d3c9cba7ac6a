package platform

func tmpl(t string, tr Transform) Rule   { return Rule{Kind: KindTemplate, Template: t, Transform: tr} }
func prefix(p string, tr Transform) Rule { return Rule{Kind: KindPrefix, Template: p, Transform: tr} }

var passthrough = Rule{Kind: KindPassthrough, Transform: TransformRaw}

var registry = []Platform{
	// Messaging
	{Key: "whatsapp", Name: "WhatsApp", Category: CategoryMessaging, Icon: "whatsapp", InputType: InputPhone, Placeholder: "+1 555 123 4567", Rule: prefix("https://wa.me/", TransformDigits), Check: CheckPhone},
	{Key: "telegram", Name: "Telegram", Category: CategoryMessaging, Icon: "telegram", InputType: InputText, Placeholder: "@username", Rule: prefix("https://t.me/", TransformHandle), Check: CheckHandle},
	{Key: "signal", Name: "Signal", Category: CategoryMessaging, Icon: "signal", InputType: InputPhone, Placeholder: "+1 555 123 4567", Rule: prefix("https://signal.me/#p/+", TransformDigits), Check: CheckPhone},
	{Key: "messenger", Name: "Messenger", Category: CategoryMessaging, Icon: "messenger", InputType: InputText, Placeholder: "username", Rule: prefix("https://m.me/", TransformHandle), Check: CheckHandle},
	{Key: "viber", Name: "Viber", Category: CategoryMessaging, Icon: "viber", InputType: InputPhone, Placeholder: "+1 555 123 4567", Rule: prefix("viber://chat?number=%2B", TransformDigits), Check: CheckPhone},

	// Contact
	{Key: "email", Name: "Email", Category: CategoryContact, Icon: "mail", InputType: InputEmail, Placeholder: "you@example.com", Rule: prefix("mailto:", TransformRaw), Check: CheckEmail},
	{Key: "phone", Name: "Phone", Category: CategoryContact, Icon: "phone", InputType: InputPhone, Placeholder: "+1 555 123 4567", Rule: prefix("tel:+", TransformDigits), Check: CheckPhone},
	{Key: "sms", Name: "SMS", Category: CategoryContact, Icon: "message", InputType: InputPhone, Placeholder: "+1 555 123 4567", Rule: prefix("sms:+", TransformDigits), Check: CheckPhone},

	// Social
	{Key: "instagram", Name: "Instagram", Category: CategorySocial, Icon: "instagram", InputType: InputText, Placeholder: "@username", Rule: prefix("https://instagram.com/", TransformHandle), Check: CheckHandle},
	{Key: "facebook", Name: "Facebook", Category: CategorySocial, Icon: "facebook", InputType: InputText, Placeholder: "username", Rule: prefix("https://facebook.com/", TransformHandle), Check: CheckHandle},
	{Key: "twitter", Name: "X (Twitter)", Category: CategorySocial, Icon: "twitter", InputType: InputText, Placeholder: "@username", Rule: prefix("https://x.com/", TransformHandle), Check: CheckHandle},
	{Key: "tiktok", Name: "TikTok", Category: CategorySocial, Icon: "tiktok", InputType: InputText, Placeholder: "@username", Rule: prefix("https://tiktok.com/@", TransformHandle), Check: CheckHandle},
	{Key: "linkedin", Name: "LinkedIn", Category: CategorySocial, Icon: "linkedin", InputType: InputText, Placeholder: "username", Rule: prefix("https://linkedin.com/in/", TransformHandle), Check: CheckHandle},
	{Key: "youtube", Name: "YouTube", Category: CategorySocial, Icon: "youtube", InputType: InputText, Placeholder: "@channel", Rule: prefix("https://youtube.com/@", TransformHandle), Check: CheckHandle},
	{Key: "snapchat", Name: "Snapchat", Category: CategorySocial, Icon: "snapchat", InputType: InputText, Placeholder: "username", Rule: prefix("https://snapchat.com/add/", TransformHandle), Check: CheckHandle},
	{Key: "pinterest", Name: "Pinterest", Category: CategorySocial, Icon: "pinterest", InputType: InputText, Placeholder: "username", Rule: prefix("https://pinterest.com/", TransformHandle), Check: CheckHandle},
	{Key: "reddit", Name: "Reddit", Category: CategorySocial, Icon: "reddit", InputType: InputText, Placeholder: "username", Rule: prefix("https://reddit.com/user/", TransformHandle), Check: CheckHandle},
	{Key: "threads", Name: "Threads", Category: CategorySocial, Icon: "threads", InputType: InputText, Placeholder: "@username", Rule: prefix("https://threads.net/@", TransformHandle), Check: CheckHandle},
	{Key: "discord", Name: "Discord", Category: CategorySocial, Icon: "discord", InputType: InputText, Placeholder: "invite code", Rule: prefix("https://discord.gg/", TransformHandle), Check: CheckHandle},
	{Key: "twitch", Name: "Twitch", Category: CategorySocial, Icon: "twitch", InputType: InputText, Placeholder: "channel", Rule: prefix("https://twitch.tv/", TransformHandle), Check: CheckHandle},
	{Key: "bluesky", Name: "Bluesky", Category: CategorySocial, Icon: "bluesky", InputType: InputText, Placeholder: "name.bsky.social", Rule: prefix("https://bsky.app/profile/", TransformHandle), Check: CheckHandle},

	// Professional
	{Key: "github", Name: "GitHub", Category: CategoryProfessional, Icon: "github", InputType: InputText, Placeholder: "username", Rule: prefix("https://github.com/", TransformHandle), Check: CheckHandle},
	{Key: "gitlab", Name: "GitLab", Category: CategoryProfessional, Icon: "gitlab", InputType: InputText, Placeholder: "username", Rule: prefix("https://gitlab.com/", TransformHandle), Check: CheckHandle},
	{Key: "behance", Name: "Behance", Category: CategoryProfessional, Icon: "behance", InputType: InputText, Placeholder: "username", Rule: prefix("https://behance.net/", TransformHandle), Check: CheckHandle},
	{Key: "dribbble", Name: "Dribbble", Category: CategoryProfessional, Icon: "dribbble", InputType: InputText, Placeholder: "username", Rule: prefix("https://dribbble.com/", TransformHandle), Check: CheckHandle},
	{Key: "medium", Name: "Medium", Category: CategoryProfessional, Icon: "medium", InputType: InputText, Placeholder: "@username", Rule: prefix("https://medium.com/@", TransformHandle), Check: CheckHandle},
	{Key: "substack", Name: "Substack", Category: CategoryProfessional, Icon: "substack", InputType: InputText, Placeholder: "publication", Rule: tmpl("https://{input}.substack.com", TransformHandle), Check: CheckHandle},

	// Music
	{Key: "spotify", Name: "Spotify", Category: CategoryMusic, Icon: "spotify", InputType: InputURL, Placeholder: "https://open.spotify.com/...", Rule: passthrough, Check: CheckURL},
	{Key: "soundcloud", Name: "SoundCloud", Category: CategoryMusic, Icon: "soundcloud", InputType: InputText, Placeholder: "username", Rule: prefix("https://soundcloud.com/", TransformHandle), Check: CheckHandle},

	// Payment
	{Key: "paypal", Name: "PayPal", Category: CategoryPayment, Icon: "paypal", InputType: InputText, Placeholder: "username", Rule: prefix("https://paypal.me/", TransformHandle), Check: CheckHandle},
	{Key: "venmo", Name: "Venmo", Category: CategoryPayment, Icon: "venmo", InputType: InputText, Placeholder: "@username", Rule: prefix("https://venmo.com/", TransformHandle), Check: CheckHandle},
	{Key: "cashapp", Name: "Cash App", Category: CategoryPayment, Icon: "cashapp", InputType: InputText, Placeholder: "$cashtag", Rule: tmpl("https://cash.app/${input}", TransformHandle), Check: CheckHandle},
	{Key: "patreon", Name: "Patreon", Category: CategoryPayment, Icon: "patreon", InputType: InputText, Placeholder: "creator", Rule: prefix("https://patreon.com/", TransformHandle), Check: CheckHandle},

	// Other
	{Key: "custom", Name: "Custom Link", Category: CategoryOther, Icon: "link", InputType: InputURL, Placeholder: "https://example.com", Rule: passthrough, Check: CheckURL},
}

var byKey = func() map[string]Platform {
	m := make(map[string]Platform, len(registry))
	for _, p := range registry {
		m[p.Key] = p
	}
	return m
}()
